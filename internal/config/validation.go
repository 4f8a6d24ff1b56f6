package config

import (
	"falcon-mcp/pkg/logging"
)

// Validate checks the whole configuration and reports every problem.
func (c Config) Validate() error {
	var errs ConfigurationErrorCollection

	if _, ok := ParseTransportMode(string(c.Mode)); !ok {
		errs.Add(ConfigurationError{
			Source:      SourceValidate,
			Key:         "mode",
			Message:     "unknown transport mode " + string(c.Mode),
			Suggestions: []string{"use one of dual, mcp, http"},
		})
	}

	if c.Mode.HTTPEnabled() {
		checkPort(&errs, "http.port", c.HTTP.Port)
		if c.HTTP.MaxBodyBytes <= 0 {
			errs.AddError(SourceValidate, "http.maxBodyBytes", "must be positive")
		}
	}

	if c.Mode.MCPEnabled() {
		switch c.MCP.Transport {
		case MCPTransportSSE, MCPTransportStreamableHTTP:
			checkPort(&errs, "mcp.port", c.MCP.Port)
		case MCPTransportStdio:
		default:
			errs.Add(ConfigurationError{
				Source:      SourceValidate,
				Key:         "mcp.transport",
				Message:     "unsupported MCP transport " + c.MCP.Transport,
				Suggestions: []string{"use one of sse, streamable-http, stdio"},
			})
		}
	}

	if c.Mode == ModeDual && c.MCP.Transport != MCPTransportStdio && c.MCP.Port != 0 && c.MCP.Port == c.HTTP.Port {
		errs.AddError(SourceValidate, "mcp.port", "must differ from http.port (%d)", c.HTTP.Port)
	}

	if c.Upstream.Timeout <= 0 {
		errs.AddError(SourceValidate, "upstream.timeout", "must be positive")
	}
	if c.Upstream.MaxAttempts < 1 {
		errs.AddError(SourceValidate, "upstream.maxAttempts", "must be at least 1")
	}
	if c.Upstream.MaxConnsPerHost < 1 {
		errs.AddError(SourceValidate, "upstream.maxConnsPerHost", "must be at least 1")
	}
	if c.Shutdown.GracePeriod < 0 {
		errs.AddError(SourceValidate, "shutdown.gracePeriod", "must not be negative")
	}

	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		errs.AddError(SourceValidate, "logging.level", "unknown level %q", c.Logging.Level)
	}
	if c.Logging.Format != "" && c.Logging.Format != string(logging.FormatText) && c.Logging.Format != string(logging.FormatJSON) {
		errs.AddError(SourceValidate, "logging.format", "unknown format %q", c.Logging.Format)
	}

	return errs.ErrOrNil()
}

func checkPort(errs *ConfigurationErrorCollection, key string, port int) {
	if port < 0 || port > 65535 {
		errs.AddError(SourceValidate, key, "port %d out of range 0-65535", port)
	}
}
