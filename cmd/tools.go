package cmd

import (
	"fmt"

	"falcon-mcp/internal/app"
	"falcon-mcp/internal/formatting"

	"github.com/spf13/cobra"
)

var toolsOutput string

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools [name]",
		Short: "List the tool catalog or describe one tool",
		Long: `Without arguments, lists every registered tool. With a tool name, shows
its parameters, types and constraints.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTools,
	}
	cmd.Flags().StringVarP(&toolsOutput, "output", "o", "table", "Output format: table, console, json or yaml")
	return cmd
}

func runTools(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseFormat(toolsOutput)
	if err != nil {
		return err
	}

	core, _, err := app.NewCLICore(newAppConfig(cmd))
	if err != nil {
		return err
	}
	defer core.Client.Close()

	views := core.Registry.Views()
	f := formatting.NewFormatter(formatting.Options{Format: format, Output: cmd.OutOrStdout()})

	if len(args) == 0 {
		return f.FormatToolsList(views)
	}
	tool := formatting.FindTool(views, args[0])
	if tool == nil {
		return fmt.Errorf("unknown tool %q (run 'falcon-mcp tools' to list the catalog)", args[0])
	}
	return f.FormatToolDetail(*tool)
}
