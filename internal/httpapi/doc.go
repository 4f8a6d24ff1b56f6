// Package httpapi is the stateless REST gateway over the invocation pipeline.
//
// Routes:
//
//	GET  /             service information and endpoint list
//	GET  /healthz      liveness; never touches the Falcon API
//	GET  /readyz       readiness; optionally checks the Falcon API is reachable
//	GET  /tools        registry introspection
//	POST /tools/{name} invoke a tool with a JSON object body
//	GET  /metrics      Prometheus metrics, when enabled
//
// Successful calls answer 200 with {"result": ...}. Failures answer
// {"error": {"kind", "message", ...}} with a status derived from the kind,
// see StatusFor.
package httpapi
