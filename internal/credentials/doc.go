// Package credentials resolves the effective Falcon credentials for a single
// tool invocation.
//
// Three sources are consulted per field, highest precedence first:
//
//  1. inline values on the request itself (api_key, tenant_id, base_url)
//  2. transport hints (for example the X-API-Key header)
//  3. the process environment, read once at startup by FromEnv
//
// The base URL falls back to DefaultBaseURL. A base URL from the request or
// a transport hint is rejected when the key comes from the environment, so
// the operator's secret only ever goes to the operator's endpoint. Resolution is pure: it performs
// no I/O, caches nothing, and yields identical output for identical input.
// This is the only package that reads credential environment variables.
package credentials
