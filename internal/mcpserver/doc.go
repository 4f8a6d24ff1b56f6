// Package mcpserver serves the tool catalog over the Model Context Protocol.
//
// Every registry descriptor becomes one MCP tool whose handler forwards the
// call to the shared invocation pipeline. Three transports are supported:
//
//   - sse: the default. Each POSTed message is handled in its own goroutine
//     and answered on the session's event stream, so calls on one session
//     may be pipelined and complete in any order. Responses carry the
//     JSON-RPC id of their request.
//   - streamable-http: one POST per message on a single endpoint.
//   - stdio: one session over the process's standard streams.
//
// # Credentials
//
// A tool call may carry inline api_key, tenant_id and base_url arguments.
// For the HTTP based transports the X-API-Key (or Authorization: Bearer),
// X-Tenant-ID and X-Base-URL headers of the request are captured as
// transport hints. Credentials are resolved again for every call; nothing
// is stored on the session.
//
// # Shutdown
//
// Stop stops accepting connections, then waits for calls already handed to
// the pipeline, bounded by the caller's context. Calls whose session has gone
// away still run to completion; their responses are dropped.
package mcpserver
