package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/testing/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns stdout.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	configPath, logLevel, transportMode, mcpTransport = "", "", "", ""
	httpPort, mcpPort = 0, 0
	toolsOutput, callOutput = "table", "json"
	callTenantID, callBaseURL = "", ""
	callQuiet = true
	versionShort = false

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(bytes.NewBufferString(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func clearCredentialEnv(t *testing.T) {
	for _, name := range []string{"FALCON_API_KEY", "CROWDSTRIKE_API_KEY", "FALCON_TENANT_ID", "CROWDSTRIKE_TENANT_ID", "FALCON_CLIENT_SECRET", "FALCON_API_BASE_URL"} {
		t.Setenv(name, "")
	}
}

func newStub(t *testing.T) *mock.FalconServer {
	t.Helper()
	stub := mock.NewFalconServer()
	require.NoError(t, stub.Start())
	t.Cleanup(func() { _ = stub.Stop(context.Background()) })
	return stub
}

func TestSetVersion(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", rootCmd.Version)
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "falcon-mcp", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)

	for _, name := range []string{"config", "log-level", "transport-mode", "mcp-transport", "http-port", "mcp-port"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "tools", "call", "version"})
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), ExitCodeError},
		{"missing credentials", api.NewError(api.KindMissingCredentials, "no key"), ExitCodeAuthRequired},
		{"auth", api.NewError(api.KindAuth, "rejected"), ExitCodeAuthRequired},
		{"wrapped upstream", fmt.Errorf("call: %w", api.NewError(api.KindUpstream, "503")), ExitCodeUpstream},
		{"protocol", api.NewError(api.KindProtocol, "garbage"), ExitCodeUpstream},
		{"validation", api.NewError(api.KindValidation, "bad"), ExitCodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestErrResultAvoidsTypedNil(t *testing.T) {
	assert.NoError(t, errResult(api.Success([]byte(`{}`))))
	assert.Error(t, errResult(api.Failure(api.NewError(api.KindInternal, "x"))))
}

func TestVersionCommand(t *testing.T) {
	original := GetVersion()
	defer SetVersion(original)
	SetVersion("9.9.9")

	out, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "falcon-mcp version 9.9.9 (go"), out)

	out, err = executeCommand(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "9.9.9\n", out)
}

func TestServeRejectsInvalidFlags(t *testing.T) {
	clearCredentialEnv(t)
	_, err := executeCommand(t, "", "serve", "--mcp-transport", "carrier-pigeon", "--transport-mode", "mcp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcp.transport")
}
