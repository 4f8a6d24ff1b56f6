package config

import "time"

const (
	DefaultHTTPPort          = 80
	DefaultMCPPort           = 8080
	DefaultUpstreamTimeout   = 30 * time.Second
	DefaultMaxConnsPerHost   = 64
	DefaultMaxAttempts       = 3
	DefaultGracePeriod       = 10 * time.Second
	DefaultMaxBodyBytes      = 1 << 20
	DefaultReadHeaderTimeout = 10 * time.Second
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() Config {
	return Config{
		Mode: ModeDual,
		MCP: MCPConfig{
			Host:              "0.0.0.0",
			Port:              DefaultMCPPort,
			Transport:         MCPTransportSSE,
			KeepAliveInterval: 30 * time.Second,
		},
		HTTP: HTTPConfig{
			Host:              "0.0.0.0",
			Port:              DefaultHTTPPort,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			MaxBodyBytes:      DefaultMaxBodyBytes,
		},
		Upstream: UpstreamConfig{
			Timeout:             DefaultUpstreamTimeout,
			MaxConnsPerHost:     DefaultMaxConnsPerHost,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
			MaxAttempts:         DefaultMaxAttempts,
			InitialBackoff:      200 * time.Millisecond,
			MaxBackoff:          2 * time.Second,
			UserAgent:           "falcon-mcp",
		},
		Shutdown: ShutdownConfig{
			GracePeriod: DefaultGracePeriod,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
