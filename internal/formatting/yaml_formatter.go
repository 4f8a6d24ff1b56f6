package formatting

import (
	"encoding/json"
	"fmt"
	"io"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/registry"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	out io.Writer
}

func (f *YAMLFormatter) FormatToolsList(tools []registry.DescriptorView) error {
	if tools == nil {
		tools = []registry.DescriptorView{}
	}
	return f.encode(map[string]interface{}{"tools": tools, "count": len(tools)})
}

func (f *YAMLFormatter) FormatToolDetail(tool registry.DescriptorView) error {
	return f.encode(tool)
}

// FormatResult decodes the JSON payload first so it renders as YAML rather
// than as an opaque byte string.
func (f *YAMLFormatter) FormatResult(result api.InvocationResult) error {
	if result.Err != nil {
		return f.encode(map[string]interface{}{"error": result.Err})
	}
	var payload interface{}
	if err := json.Unmarshal(result.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode result payload: %w", err)
	}
	return f.encode(map[string]interface{}{"result": payload})
}

func (f *YAMLFormatter) encode(v interface{}) error {
	enc := yaml.NewEncoder(f.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
