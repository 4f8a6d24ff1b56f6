// Package config provides configuration management for falcon-mcp.
//
// Configuration is assembled once at startup, in increasing precedence:
//
//  1. built-in defaults (GetDefaultConfig)
//  2. an optional YAML file (config.yaml in the working directory, or the
//     file named by --config)
//  3. environment variables (TRANSPORT_MODE, HTTP_PORT, STDIO_PORT, ...)
//  4. command-line flags, applied by the cmd package
//
// The result is never re-read while the process runs.
//
// Credentials are deliberately absent from this package: API keys, tenant ids
// and the API base URL are read by the credentials package, which is the
// only component allowed to touch credential material.
//
// # Example config.yaml
//
//	mode: dual
//	mcp:
//	  port: 8080
//	  transport: sse
//	http:
//	  port: 80
//	  checkUpstream: false
//	upstream:
//	  timeout: 30s
//	  maxConnsPerHost: 64
//	  maxAttempts: 3
//	shutdown:
//	  gracePeriod: 10s
//	logging:
//	  level: info
//
// # Errors
//
// Loading and validation collect every problem into a
// ConfigurationErrorCollection instead of stopping at the first one.
package config
