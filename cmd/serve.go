package cmd

import (
	"context"
	"fmt"

	"falcon-mcp/internal/app"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server and the REST gateway",
		Long: `Starts the front ends selected by the transport mode and serves until
SIGINT or SIGTERM.

Transport modes:
  dual  MCP and REST gateway side by side (default)
  mcp   MCP only
  http  REST gateway only

The MCP front end speaks SSE by default. Use --mcp-transport=stdio to let an
assistant spawn falcon-mcp as a subprocess; logs then go to stderr only.

Credentials:
  FALCON_API_KEY (or CROWDSTRIKE_API_KEY) holds the default key, either
  "client_id:client_secret" or a client id with FALCON_CLIENT_SECRET.
  FALCON_TENANT_ID selects a child CID and FALCON_API_BASE_URL the cloud.
  Callers may override all three per request.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.NewApplication(newAppConfig(cmd))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}
