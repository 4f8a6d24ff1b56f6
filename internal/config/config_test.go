package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, ModeDual, cfg.Mode)
	assert.Equal(t, 80, cfg.HTTP.Port)
	assert.Equal(t, 8080, cfg.MCP.Port)
	assert.Equal(t, MCPTransportSSE, cfg.MCP.Transport)
	assert.Equal(t, 30*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 3, cfg.Upstream.MaxAttempts)
	assert.NoError(t, cfg.Validate())
}

func TestParseTransportMode(t *testing.T) {
	tests := []struct {
		in    string
		mode  TransportMode
		valid bool
	}{
		{"dual", ModeDual, true},
		{"", ModeDual, true},
		{"HTTP", ModeHTTP, true},
		{"stdio", ModeMCP, true},
		{"mcp", ModeMCP, true},
		{"grpc", ModeDual, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			mode, valid := ParseTransportMode(tt.in)
			assert.Equal(t, tt.mode, mode)
			assert.Equal(t, tt.valid, valid)
		})
	}

	assert.True(t, ModeDual.MCPEnabled())
	assert.True(t, ModeDual.HTTPEnabled())
	assert.False(t, ModeHTTP.MCPEnabled())
	assert.False(t, ModeMCP.HTTPEnabled())
}

func TestLoadConfig_MissingDefaultFileUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: http
http:
  port: 9000
  checkUpstream: true
upstream:
  timeout: 5s
  maxAttempts: 2
shutdown:
  gracePeriod: 3s
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ModeHTTP, cfg.Mode)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.True(t, cfg.HTTP.CheckUpstream)
	assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 2, cfg.Upstream.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.Shutdown.GracePeriod)
	// Untouched sections keep their defaults.
	assert.Equal(t, 8080, cfg.MCP.Port)
	assert.Equal(t, DefaultMaxConnsPerHost, cfg.Upstream.MaxConnsPerHost)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestApplyEnv(t *testing.T) {
	cfg := GetDefaultConfig()
	err := ApplyEnv(&cfg, envOf(map[string]string{
		EnvTransportMode: "stdio",
		EnvHTTPPort:      "8081",
		EnvStdioPort:     "9090",
		EnvMCPTransport:  MCPTransportStreamableHTTP,
		EnvLogLevel:      "debug",
		EnvGracePeriod:   "2s",
		EnvTimeout:       "15s",
	}))
	require.NoError(t, err)

	assert.Equal(t, ModeMCP, cfg.Mode)
	assert.Equal(t, 8081, cfg.HTTP.Port)
	assert.Equal(t, 9090, cfg.MCP.Port)
	assert.Equal(t, MCPTransportStreamableHTTP, cfg.MCP.Transport)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2*time.Second, cfg.Shutdown.GracePeriod)
	assert.Equal(t, 15*time.Second, cfg.Upstream.Timeout)
}

func TestApplyEnv_MCPPortOverridesStdioPort(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, ApplyEnv(&cfg, envOf(map[string]string{
		EnvStdioPort: "9090",
		EnvMCPPort:   "9191",
	})))
	assert.Equal(t, 9191, cfg.MCP.Port)
}

func TestApplyEnv_InvalidModeFallsBackToDual(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Mode = ModeHTTP

	require.NoError(t, ApplyEnv(&cfg, envOf(map[string]string{EnvTransportMode: "carrier-pigeon"})))
	assert.Equal(t, ModeDual, cfg.Mode)
}

func TestApplyEnv_CollectsAllErrors(t *testing.T) {
	cfg := GetDefaultConfig()
	err := ApplyEnv(&cfg, envOf(map[string]string{
		EnvHTTPPort:    "eighty",
		EnvStdioPort:   "x",
		EnvGracePeriod: "soon",
	}))
	require.Error(t, err)

	var collection ConfigurationErrorCollection
	require.True(t, errors.As(err, &collection))
	assert.Equal(t, 3, collection.Count())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.HTTP.Port = 70000
	cfg.MCP.Transport = "websocket"
	cfg.Upstream.Timeout = 0
	cfg.Upstream.MaxAttempts = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)

	var collection ConfigurationErrorCollection
	require.True(t, errors.As(err, &collection))

	keys := make([]string, 0, collection.Count())
	for _, e := range collection.Errors {
		keys = append(keys, e.Key)
	}
	assert.ElementsMatch(t, []string{
		"http.port", "mcp.transport", "upstream.timeout", "upstream.maxAttempts", "logging.level",
	}, keys)
	assert.Contains(t, collection.GetSummary(), "use one of sse, streamable-http, stdio")
}

func TestValidate_PortCollision(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.MCP.Port = cfg.HTTP.Port

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcp.port")

	cfg.Mode = ModeHTTP
	assert.NoError(t, cfg.Validate())
}

func TestValidate_StdioSkipsPortChecks(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Mode = ModeMCP
	cfg.MCP.Transport = MCPTransportStdio
	cfg.MCP.Port = -1

	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: 9000\n"), 0o600))

	cfg, err := Load(path, envOf(map[string]string{EnvHTTPPort: "9100"}))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTP.Port)
}

func TestConfigurationErrorCollection_Error(t *testing.T) {
	var c ConfigurationErrorCollection
	assert.NoError(t, c.ErrOrNil())
	assert.Equal(t, "no configuration errors", c.Error())

	c.AddError(SourceEnv, "HTTP_PORT", "not a number: %q", "x")
	assert.Equal(t, `[env] HTTP_PORT: not a number: "x"`, c.Error())

	c.AddError(SourceValidate, "mode", "bad")
	assert.Contains(t, c.Error(), "2 configuration errors")
}
