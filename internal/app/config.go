package app

import (
	"io"
	"os"

	"falcon-mcp/internal/config"
	"falcon-mcp/pkg/logging"
)

// Config holds the bootstrap inputs of the application.
type Config struct {
	// ConfigPath is an optional YAML file. Empty means ./config.yaml when
	// present.
	ConfigPath string

	// Version is reported to MCP clients and by GET /.
	Version string

	// Overrides carry command-line flags; they win over file and environment.
	Overrides Overrides

	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)

	// LogOutput receives log lines. Defaults to stderr so stdout stays free
	// for the stdio transport.
	LogOutput io.Writer

	// Stdin and Stdout back the stdio MCP transport.
	Stdin  io.Reader
	Stdout io.Writer

	// Settings, when set, is used instead of loading configuration.
	Settings *config.Config
}

// Overrides are optional command-line settings. Zero values mean "not set".
type Overrides struct {
	TransportMode string
	MCPTransport  string
	LogLevel      string
	HTTPPort      int
	MCPPort       int
}

// NewConfig creates a bootstrap configuration reading the real environment.
func NewConfig(configPath, version string) *Config {
	return &Config{
		ConfigPath: configPath,
		Version:    version,
		Lookup:     os.LookupEnv,
		LogOutput:  os.Stderr,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
	}
}

func (c *Config) withDefaults() {
	if c.Lookup == nil {
		c.Lookup = os.LookupEnv
	}
	if c.LogOutput == nil {
		c.LogOutput = os.Stderr
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Version == "" {
		c.Version = "dev"
	}
}

// apply overlays the overrides onto settings.
func (o Overrides) apply(settings *config.Config) {
	if o.TransportMode != "" {
		mode, ok := config.ParseTransportMode(o.TransportMode)
		if !ok {
			logging.Warn("Bootstrap", "Invalid transport mode %q, falling back to %s", o.TransportMode, mode)
		}
		settings.Mode = mode
	}
	if o.MCPTransport != "" {
		settings.MCP.Transport = o.MCPTransport
	}
	if o.LogLevel != "" {
		settings.Logging.Level = o.LogLevel
	}
	if o.HTTPPort != 0 {
		settings.HTTP.Port = o.HTTPPort
	}
	if o.MCPPort != 0 {
		settings.MCP.Port = o.MCPPort
	}
}
