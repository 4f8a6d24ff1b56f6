// Package registry holds the static catalog of tools exposed by both
// transports.
//
// A Registry is filled once during startup and then sealed. After Seal it is
// read-only: Lookup and List never block and never mutate, so the registry is
// shared by reference between the MCP server, the HTTP gateway and the
// invocation pipeline without any locking.
//
// Each ToolDescriptor declares its parameters with a small schema (type,
// required, default, enumerations, numeric bounds). Validate checks a raw
// parameter mapping against that schema and reports every offending field
// in one ValidationError so a caller can fix all problems in one round trip.
package registry
