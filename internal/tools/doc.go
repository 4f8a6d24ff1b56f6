// Package tools declares the Falcon tool catalog.
//
// Each tool is a registry.ToolDescriptor: a name, a parameter schema and an
// api.Operation that maps validated parameters to one Falcon API request.
// The catalog is pure data; credential handling, validation and dispatch
// happen in the invocation pipeline.
//
// Tool families:
//   - query_*: FQL queries taking filter, limit, offset and sort
//   - get_*_details: entity lookups taking a list of ids
//   - update_detection_status, create_ioc, delete_ioc: mutations
package tools
