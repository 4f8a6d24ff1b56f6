package formatting

import (
	"fmt"
	"io"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/registry"
)

// ConsoleFormatter provides plain console output without colours or tables.
type ConsoleFormatter struct {
	out io.Writer
}

func (f *ConsoleFormatter) FormatToolsList(tools []registry.DescriptorView) error {
	if len(tools) == 0 {
		_, err := fmt.Fprintln(f.out, "No tools available.")
		return err
	}
	fmt.Fprintf(f.out, "Available tools (%d):\n", len(tools))
	for i, tool := range tools {
		fmt.Fprintf(f.out, "  %d. %-34s - %s\n", i+1, tool.Name, tool.Description)
	}
	return nil
}

func (f *ConsoleFormatter) FormatToolDetail(tool registry.DescriptorView) error {
	fmt.Fprintf(f.out, "Tool: %s\nDescription: %s\n", tool.Name, tool.Description)
	if len(tool.Parameters) == 0 {
		return nil
	}
	fmt.Fprintln(f.out, "Parameters:")
	for _, name := range parameterNames(tool) {
		p := tool.Parameters[name]
		marker := ""
		if p.Required {
			marker = " (required)"
		}
		fmt.Fprintf(f.out, "  - %s: %s%s", name, typeLabel(p), marker)
		if c := constraints(p); c != "" {
			fmt.Fprintf(f.out, " [%s]", c)
		}
		fmt.Fprintln(f.out)
	}
	return nil
}

func (f *ConsoleFormatter) FormatResult(result api.InvocationResult) error {
	if result.Err != nil {
		_, err := fmt.Fprintf(f.out, "Error: %s\n", result.Err.Error())
		return err
	}
	_, err := fmt.Fprintln(f.out, PrettyJSON(result.Payload))
	return err
}
