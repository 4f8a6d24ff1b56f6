package formatting

import (
	"fmt"
	"io"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/registry"
	"falcon-mcp/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	out io.Writer
}

// FormatToolsList renders one row per tool.
func (f *TableFormatter) FormatToolsList(tools []registry.DescriptorView) error {
	if len(tools) == 0 {
		return f.formatEmptyMessage("No tools found")
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("PARAMETERS"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
	})
	for _, tool := range tools {
		t.AppendRow(table.Row{
			text.FgHiWhite.Sprint(tool.Name),
			len(tool.Parameters),
			strings.Summary(tool.Description, strings.DefaultDescriptionMaxLen),
		})
	}
	t.Render()

	_, err := fmt.Fprintf(f.out, "\n%s %s %s\n",
		text.FgHiBlue.Sprint("Total:"),
		text.FgHiWhite.Sprint(len(tools)),
		text.FgHiBlue.Sprint("tools"))
	return err
}

// FormatToolDetail renders the description and a parameter table.
func (f *TableFormatter) FormatToolDetail(tool registry.DescriptorView) error {
	fmt.Fprintf(f.out, "%s %s\n%s\n\n", text.FgHiCyan.Sprint("Tool:"), text.FgHiWhite.Sprint(tool.Name), tool.Description)
	if len(tool.Parameters) == 0 {
		return f.formatEmptyMessage("No parameters")
	}

	t := f.createTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("PARAMETER"),
		text.FgHiCyan.Sprint("TYPE"),
		text.FgHiCyan.Sprint("REQUIRED"),
		text.FgHiCyan.Sprint("CONSTRAINTS"),
		text.FgHiCyan.Sprint("DESCRIPTION"),
	})
	for _, name := range parameterNames(tool) {
		p := tool.Parameters[name]
		required := ""
		if p.Required {
			required = text.FgHiGreen.Sprint("yes")
		}
		t.AppendRow(table.Row{
			name,
			typeLabel(p),
			required,
			constraints(p),
			strings.TruncateDescription(p.Description, strings.DefaultDescriptionMaxLen),
		})
	}
	t.Render()
	return nil
}

// FormatResult prints the payload as indented JSON, or a table describing
// the failure.
func (f *TableFormatter) FormatResult(result api.InvocationResult) error {
	if result.Err == nil {
		_, err := fmt.Fprintln(f.out, PrettyJSON(result.Payload))
		return err
	}

	e := result.Err
	fmt.Fprintf(f.out, "%s %s\n", text.FgRed.Sprint(string(e.Kind)+":"), e.Message)
	if e.RemoteStatus != 0 {
		fmt.Fprintf(f.out, "%s %d\n", text.FgHiBlue.Sprint("Remote status:"), e.RemoteStatus)
	}
	if len(e.Fields) == 0 {
		return nil
	}

	t := f.createTable()
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("FIELD"), text.FgHiCyan.Sprint("PROBLEM")})
	for _, fe := range e.Fields {
		t.AppendRow(table.Row{fe.Field, fe.Message})
	}
	t.Render()
	return nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) formatEmptyMessage(message string) error {
	_, err := fmt.Fprintln(f.out, text.FgYellow.Sprint(message))
	return err
}
