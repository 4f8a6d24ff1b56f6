// Package app bootstraps and supervises the falcon-mcp process.
//
// The Application follows a two-phase pattern:
//
//  1. Bootstrap: load configuration (defaults, optional YAML file,
//     environment, command-line overrides), initialize logging, build the
//     tool registry and seal it, then wire the credential resolver, the
//     Falcon client, the invocation pipeline and the enabled transports.
//  2. Run: bind every enabled transport, serve them concurrently and shut
//     down on SIGINT, SIGTERM, context cancellation or the first transport
//     failure.
//
// Shutdown stops accepting new connections first, then waits for in-flight
// calls for at most the configured grace period. Under systemd with
// Type=notify the supervisor reports READY=1 once every transport is bound
// and STOPPING=1 when shutdown begins.
//
// Example usage:
//
//	cfg := app.NewConfig("", "1.0.0")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	return application.Run(ctx)
package app
