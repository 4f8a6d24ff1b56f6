// Package falcon is the remote client adapter for the CrowdStrike Falcon
// API.
//
// A Client turns one api.Operation plus validated parameters and resolved
// credentials into exactly one logical API call:
//
//  1. exchange the client id and secret for a bearer token at
//     {base}/oauth2/token (OAuth2 client credentials, never cached)
//  2. send the request with Authorization and, when a tenant is set,
//     X-CS-TENANT-ID headers
//  3. map the response: 2xx to the raw JSON body, 401/403 to AuthError,
//     other 4xx to ClientError, 5xx and network failures to UpstreamError,
//     and an unparseable body to ProtocolError
//
// Only UpstreamError is retried, a bounded number of times with exponential
// backoff. Every attempt carries a fixed deadline. The caller's cancellation
// does not abort an attempt already dispatched; the result is simply
// discarded by the caller.
//
// All calls share one http.Transport whose MaxConnsPerHost bounds the number
// of simultaneously open connections. Tenants share the pool because the
// tenant only changes request headers.
package falcon
