package config

import (
	"strings"
	"time"
)

// Config is the top-level configuration structure for falcon-mcp.
type Config struct {
	Mode     TransportMode  `yaml:"mode"`
	MCP      MCPConfig      `yaml:"mcp"`
	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// TransportMode selects which front ends run.
type TransportMode string

const (
	ModeDual TransportMode = "dual"
	ModeMCP  TransportMode = "mcp"
	ModeHTTP TransportMode = "http"
)

// ParseTransportMode maps a mode name to a TransportMode. "stdio" is
// accepted as an alias for the MCP-only mode. Unknown names return ModeDual
// and false.
func ParseTransportMode(name string) (TransportMode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dual", "":
		return ModeDual, true
	case "mcp", "stdio":
		return ModeMCP, true
	case "http":
		return ModeHTTP, true
	default:
		return ModeDual, false
	}
}

// MCPEnabled reports whether the protocol transport runs in this mode.
func (m TransportMode) MCPEnabled() bool {
	return m == ModeDual || m == ModeMCP
}

// HTTPEnabled reports whether the REST gateway runs in this mode.
func (m TransportMode) HTTPEnabled() bool {
	return m == ModeDual || m == ModeHTTP
}

const (
	// MCPTransportStreamableHTTP is the streamable HTTP transport.
	MCPTransportStreamableHTTP = "streamable-http"
	// MCPTransportSSE is the Server-Sent Events transport.
	MCPTransportSSE = "sse"
	// MCPTransportStdio is the standard I/O transport.
	MCPTransportStdio = "stdio"
)

// MCPConfig configures the protocol transport.
type MCPConfig struct {
	Host              string        `yaml:"host,omitempty"`              // Host to bind to (default: 0.0.0.0)
	Port              int           `yaml:"port,omitempty"`              // TCP port (default: 8080)
	Transport         string        `yaml:"transport,omitempty"`         // sse, streamable-http or stdio (default: sse)
	BaseURL           string        `yaml:"baseUrl,omitempty"`           // Public base URL advertised to SSE clients
	KeepAliveInterval time.Duration `yaml:"keepAliveInterval,omitempty"` // SSE keep-alive ping interval
}

// HTTPConfig configures the REST gateway.
type HTTPConfig struct {
	Host              string        `yaml:"host,omitempty"`
	Port              int           `yaml:"port,omitempty"`
	ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout,omitempty"`
	MaxBodyBytes      int64         `yaml:"maxBodyBytes,omitempty"`
	// CheckUpstream makes /readyz probe the Falcon API. /healthz never does.
	CheckUpstream bool `yaml:"checkUpstream,omitempty"`
}

// UpstreamConfig configures the Falcon API client.
type UpstreamConfig struct {
	Timeout             time.Duration `yaml:"timeout,omitempty"`
	MaxConnsPerHost     int           `yaml:"maxConnsPerHost,omitempty"`
	MaxIdleConnsPerHost int           `yaml:"maxIdleConnsPerHost,omitempty"`
	IdleConnTimeout     time.Duration `yaml:"idleConnTimeout,omitempty"`
	MaxAttempts         int           `yaml:"maxAttempts,omitempty"`
	InitialBackoff      time.Duration `yaml:"initialBackoff,omitempty"`
	MaxBackoff          time.Duration `yaml:"maxBackoff,omitempty"`
	UserAgent           string        `yaml:"userAgent,omitempty"`
}

// ShutdownConfig bounds graceful shutdown.
type ShutdownConfig struct {
	GracePeriod time.Duration `yaml:"gracePeriod,omitempty"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // text or json
}

// MetricsConfig toggles the Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}
