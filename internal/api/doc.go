// Package api defines the shared contract between the falcon-mcp transports
// and the dispatch core.
//
// Both front ends (the MCP protocol server and the HTTP gateway) translate
// their native message shapes into an InvocationRequest, hand it to the
// invocation pipeline and render the returned InvocationResult. This package
// holds those types so that neither transport depends on the other and the
// core depends on neither.
//
// # Error Taxonomy
//
// Every failure that leaves the core is an *Error carrying a stable Kind:
//
//   - **ValidationError**: parameters or credentials failed validation
//   - **UnknownToolError**: no tool registered under the requested name
//   - **DuplicateToolError**: a tool name was registered twice (startup only)
//   - **MissingCredentialsError**: no API key resolved from any source
//   - **AuthError**: the upstream rejected the credentials (401/403)
//   - **ClientError**: the upstream rejected the request (other 4xx)
//   - **UpstreamError**: 5xx, network failure or timeout; the only retried kind
//   - **ProtocolError**: the upstream returned a malformed body
//   - **InternalError**: anything unclassified
//
// Messages are written for the caller and never contain credential values.
//
// # Operations
//
// An Operation is the declarative handler attached to each tool descriptor:
// an HTTP method, a path and a function that maps validated parameters to a
// query string and optional JSON body. The upstream client executes it.
//
// This package imports no other internal package.
package api
