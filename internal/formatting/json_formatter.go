package formatting

import (
	"encoding/json"
	"io"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/registry"
)

// JSONFormatter provides structured JSON output formatting. Results use the
// same envelopes as the REST gateway.
type JSONFormatter struct {
	out io.Writer
}

func (f *JSONFormatter) FormatToolsList(tools []registry.DescriptorView) error {
	if tools == nil {
		tools = []registry.DescriptorView{}
	}
	return f.encode(map[string]interface{}{"tools": tools, "count": len(tools)})
}

func (f *JSONFormatter) FormatToolDetail(tool registry.DescriptorView) error {
	return f.encode(tool)
}

func (f *JSONFormatter) FormatResult(result api.InvocationResult) error {
	if result.Err != nil {
		return f.encode(api.ErrorResponse{Error: result.Err})
	}
	return f.encode(api.ResultResponse{Result: result.Payload})
}

func (f *JSONFormatter) encode(v interface{}) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
