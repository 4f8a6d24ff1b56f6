// Package formatting renders tool catalogs and invocation results for the
// command line in console, table, JSON or YAML form.
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/registry"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatConsole OutputFormat = "console" // Simple console output
	FormatJSON    OutputFormat = "json"    // JSON output
	FormatYAML    OutputFormat = "yaml"    // YAML output
	FormatTable   OutputFormat = "table"   // Rich table output
)

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Output io.Writer // Defaults to stdout
}

// Formatter renders CLI output.
type Formatter interface {
	FormatToolsList(tools []registry.DescriptorView) error
	FormatToolDetail(tool registry.DescriptorView) error
	FormatResult(result api.InvocationResult) error
}

// ParseFormat validates a --output flag value.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatConsole, FormatJSON, FormatYAML, FormatTable:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, console, json or yaml)", name)
	}
}

// NewFormatter creates the formatter for options.Format.
func NewFormatter(options Options) Formatter {
	if options.Output == nil {
		options.Output = os.Stdout
	}
	switch options.Format {
	case FormatJSON:
		return &JSONFormatter{out: options.Output}
	case FormatYAML:
		return &YAMLFormatter{out: options.Output}
	case FormatConsole:
		return &ConsoleFormatter{out: options.Output}
	default:
		return &TableFormatter{out: options.Output}
	}
}

// FindTool returns the view named name, or nil.
func FindTool(tools []registry.DescriptorView, name string) *registry.DescriptorView {
	for i := range tools {
		if tools[i].Name == name {
			return &tools[i]
		}
	}
	return nil
}
