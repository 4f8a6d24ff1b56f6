package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"falcon-mcp/pkg/logging"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is loaded from the working directory when present.
const DefaultConfigFile = "config.yaml"

// Environment variable names for non-secret settings.
const (
	EnvTransportMode = "TRANSPORT_MODE"
	EnvHTTPPort      = "HTTP_PORT"
	EnvMCPPort       = "MCP_PORT"
	EnvStdioPort     = "STDIO_PORT"
	EnvMCPTransport  = "MCP_TRANSPORT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
	EnvGracePeriod   = "SHUTDOWN_GRACE_PERIOD"
	EnvTimeout       = "FALCON_API_TIMEOUT"
)

// LoadConfig returns the defaults overlaid with the YAML file at path.
// An empty path means DefaultConfigFile, which may be absent; an explicit
// path must exist.
func LoadConfig(path string) (Config, error) {
	config := GetDefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			logging.Debug("ConfigLoader", "No %s found, using defaults", path)
			return config, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return config, nil
}

// ApplyEnv overlays environment variables read through lookup. An invalid
// TRANSPORT_MODE falls back to dual with a warning; other malformed values
// are collected and returned together.
func ApplyEnv(config *Config, lookup func(string) (string, bool)) error {
	var errs ConfigurationErrorCollection

	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if raw, ok := get(EnvTransportMode); ok {
		mode, valid := ParseTransportMode(raw)
		if !valid {
			logging.Warn("Config", "Invalid %s %q, falling back to %s", EnvTransportMode, raw, ModeDual)
		}
		config.Mode = mode
	}

	port := func(name string, dst *int) {
		raw, ok := get(name)
		if !ok {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs.AddError(SourceEnv, name, "not a number: %q", raw)
			return
		}
		*dst = n
	}
	port(EnvHTTPPort, &config.HTTP.Port)
	port(EnvStdioPort, &config.MCP.Port)
	port(EnvMCPPort, &config.MCP.Port)

	if raw, ok := get(EnvMCPTransport); ok {
		config.MCP.Transport = raw
	}
	if raw, ok := get(EnvLogLevel); ok {
		config.Logging.Level = raw
	}
	if raw, ok := get(EnvLogFormat); ok {
		config.Logging.Format = raw
	}

	duration := func(name string, dst *time.Duration) {
		raw, ok := get(name)
		if !ok {
			return
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs.AddError(SourceEnv, name, "not a duration: %q", raw)
			return
		}
		*dst = d
	}
	duration(EnvGracePeriod, &config.Shutdown.GracePeriod)
	duration(EnvTimeout, &config.Upstream.Timeout)

	return errs.ErrOrNil()
}

// Load is LoadConfig followed by ApplyEnv and Validate.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&config, lookup); err != nil {
		return Config{}, err
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
