package registry

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// ParameterView is the public, JSON-serializable form of a Parameter.
type ParameterView struct {
	Type        ParamType   `json:"type" yaml:"type"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool        `json:"required" yaml:"required"`
	Default     interface{} `json:"default,omitempty" yaml:"default,omitempty"`
	Enum        []string    `json:"enum,omitempty" yaml:"enum,omitempty"`
	Items       *ItemsView  `json:"items,omitempty" yaml:"items,omitempty"`
	Minimum     *float64    `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64    `json:"maximum,omitempty" yaml:"maximum,omitempty"`
}

// ItemsView describes array items.
type ItemsView struct {
	Type ParamType `json:"type" yaml:"type"`
	Enum []string  `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// DescriptorView is the introspection form of a ToolDescriptor, without
// its handler.
type DescriptorView struct {
	Name        string                   `json:"name" yaml:"name"`
	Description string                   `json:"description" yaml:"description"`
	Parameters  map[string]ParameterView `json:"parameters" yaml:"parameters"`
}

// View returns the introspection form of the descriptor.
func (d ToolDescriptor) View() DescriptorView {
	params := make(map[string]ParameterView, len(d.Parameters))
	for _, p := range d.Parameters {
		v := ParameterView{
			Type:        p.Type,
			Description: p.Description,
			Required:    p.Required,
			Default:     p.Default,
			Enum:        p.Enum,
			Minimum:     p.Min,
			Maximum:     p.Max,
		}
		if p.Type == TypeArray {
			v.Items = &ItemsView{Type: p.itemType(), Enum: p.ItemEnum}
		}
		params[p.Name] = v
	}
	return DescriptorView{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  params,
	}
}

// Views returns the views of every registered tool in registration order.
func (r *Registry) Views() []DescriptorView {
	views := make([]DescriptorView, 0, r.Len())
	for d := range r.List() {
		views = append(views, d.View())
	}
	return views
}

// InputSchema converts the declared parameters to an MCP input schema.
// Extra properties, such as the inline credential arguments, are appended
// as optional strings.
func (d ToolDescriptor) InputSchema(extra map[string]string) mcp.ToolInputSchema {
	properties := make(map[string]interface{}, len(d.Parameters)+len(extra))
	required := []string{}

	for _, p := range d.Parameters {
		prop := map[string]interface{}{
			"type": string(p.Type),
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Min != nil {
			prop["minimum"] = *p.Min
		}
		if p.Max != nil {
			prop["maximum"] = *p.Max
		}
		if p.Type == TypeArray {
			items := map[string]interface{}{"type": string(p.itemType())}
			if len(p.ItemEnum) > 0 {
				items["enum"] = p.ItemEnum
			}
			prop["items"] = items
			if p.MinItems > 0 {
				prop["minItems"] = p.MinItems
			}
		}
		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	for name, description := range extra {
		properties[name] = map[string]interface{}{
			"type":        "string",
			"description": description,
		}
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// MCPTool converts the descriptor to an MCP tool definition.
func (d ToolDescriptor) MCPTool(extra map[string]string) mcp.Tool {
	return mcp.Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: d.InputSchema(extra),
	}
}
