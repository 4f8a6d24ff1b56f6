// Package pipeline implements the transport-agnostic invocation core shared
// by the MCP server and the REST gateway.
//
// Every call moves through the same states and stops at the first failure:
//
//	Received -> Looked-Up -> Validated -> Credentialed -> Dispatched -> Completed
//
// The pipeline never returns an unclassified error. Adapter failures that
// already carry an api.Kind pass through unchanged; anything else, including
// a panic in the adapter, becomes an InternalError.
package pipeline
