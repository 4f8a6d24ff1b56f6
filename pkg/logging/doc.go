// Package logging provides subsystem-tagged structured logging for the
// falcon-mcp server, built on the standard slog package.
//
// # Log Levels
//   - **Debug**: request mapping and retry details
//   - **Info**: startup, listener and shutdown events
//   - **Warn**: configuration fallbacks and retried upstream failures
//   - **Error**: transport and upstream failures
//
// Every entry carries a "subsystem" attribute so logs can be filtered per
// component.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Bootstrap", "Starting transports in %s mode", mode)
//	logging.Warn("Config", "Invalid TRANSPORT_MODE %q, using dual", raw)
//	logging.Error("HTTPServer", err, "Listener failed")
//
// # Subsystems
//
//   - **Bootstrap**: application initialization and shutdown
//   - **Config**: configuration loading and validation
//   - **Pipeline**: tool invocation
//   - **FalconClient**: upstream API calls
//   - **MCPServer**: protocol transport
//   - **HTTPServer**: REST gateway
//   - **Audit**: one event per tool invocation
//
// # Audit Logging
//
// Every invocation emits one audit event:
//
//	logging.Audit(logging.AuditEvent{
//	    Action:    "tool_call",
//	    Outcome:   logging.OutcomeSuccess,
//	    Target:    "query_hosts",
//	    Transport: "http",
//	})
//
// # Secrets
//
// Credential values must never reach a log line. Use Redact to scrub text
// that may echo a secret (for example an upstream error body) and
// MaskSecret when only presence should be reported.
//
// # Thread Safety
//
// All functions are safe for concurrent use. Init replaces the logger under
// a lock and should be called once, before transports start.
package logging
