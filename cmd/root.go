package cmd

import (
	"os"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/app"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates missing or rejected credentials.
	ExitCodeAuthRequired = 2
	// ExitCodeUpstream indicates the Falcon API failed or answered garbage.
	ExitCodeUpstream = 3
)

// Global flags shared by every command that loads configuration.
var (
	configPath    string
	logLevel      string
	transportMode string
	mcpTransport  string
	httpPort      int
	mcpPort       int
)

// rootCmd represents the base command for the falcon-mcp application.
var rootCmd = &cobra.Command{
	Use:   "falcon-mcp",
	Short: "Expose the CrowdStrike Falcon API over MCP and REST",
	Long: `falcon-mcp serves a catalog of CrowdStrike Falcon operations to AI
assistants over the Model Context Protocol and to scripts over a plain
HTTP/JSON gateway. Both front ends share one validation, credential and
dispatch pipeline.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "falcon-mcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps classified failures to semantic exit codes for scripting.
func getExitCode(err error) int {
	apiErr, ok := api.AsError(err)
	if !ok {
		return ExitCodeError
	}
	switch apiErr.Kind {
	case api.KindMissingCredentials, api.KindAuth:
		return ExitCodeAuthRequired
	case api.KindUpstream, api.KindProtocol:
		return ExitCodeUpstream
	default:
		return ExitCodeError
	}
}

// newAppConfig builds the bootstrap configuration from the global flags.
func newAppConfig(cmd *cobra.Command) *app.Config {
	cfg := app.NewConfig(configPath, GetVersion())
	cfg.Stdin = cmd.InOrStdin()
	cfg.Stdout = cmd.OutOrStdout()
	cfg.LogOutput = cmd.ErrOrStderr()
	cfg.Overrides = app.Overrides{
		TransportMode: transportMode,
		MCPTransport:  mcpTransport,
		LogLevel:      logLevel,
		HTTPPort:      httpPort,
		MCPPort:       mcpPort,
	}
	return cfg
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a YAML configuration file (default ./config.yaml when present)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (env LOG_LEVEL)")
	flags.StringVar(&transportMode, "transport-mode", "", "Front ends to run: dual, mcp or http (env TRANSPORT_MODE)")
	flags.StringVar(&mcpTransport, "mcp-transport", "", "MCP transport: sse, streamable-http or stdio (env MCP_TRANSPORT)")
	flags.IntVar(&httpPort, "http-port", 0, "REST gateway port (env HTTP_PORT)")
	flags.IntVar(&mcpPort, "mcp-port", 0, "MCP port for sse and streamable-http (env MCP_PORT)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newToolsCmd())
	rootCmd.AddCommand(newCallCmd())
}

// errResult lets a failed invocation flow through cobra while keeping its
// classification for the exit code. It avoids returning a typed nil.
func errResult(result api.InvocationResult) error {
	if result.Err == nil {
		return nil
	}
	return result.Err
}
