package formatting

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"falcon-mcp/internal/registry"
)

// PrettyJSON formats any value as indented JSON for human-readable display.
// It falls back to fmt.Sprintf when the value cannot be marshaled.
//
// Example:
//
//	data := map[string]interface{}{"name": "test", "value": 42}
//	fmt.Println(formatting.PrettyJSON(data))
//	// Output:
//	// {
//	//   "name": "test",
//	//   "value": 42
//	// }
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// parameterNames returns required parameters first, then the rest, each
// group sorted by name.
func parameterNames(view registry.DescriptorView) []string {
	names := make([]string, 0, len(view.Parameters))
	for name := range view.Parameters {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := view.Parameters[names[i]].Required, view.Parameters[names[j]].Required
		if ri != rj {
			return ri
		}
		return names[i] < names[j]
	})
	return names
}

// typeLabel renders a parameter type, including array item types.
func typeLabel(p registry.ParameterView) string {
	label := string(p.Type)
	if p.Items != nil {
		label = fmt.Sprintf("%s<%s>", label, p.Items.Type)
	}
	return label
}

// constraints summarises enum, default and range restrictions.
func constraints(p registry.ParameterView) string {
	var parts []string
	enum := p.Enum
	if p.Items != nil && len(p.Items.Enum) > 0 {
		enum = p.Items.Enum
	}
	if len(enum) > 0 {
		parts = append(parts, "one of "+strings.Join(enum, "|"))
	}
	if p.Minimum != nil && p.Maximum != nil {
		parts = append(parts, fmt.Sprintf("%g..%g", *p.Minimum, *p.Maximum))
	} else if p.Minimum != nil {
		parts = append(parts, fmt.Sprintf(">= %g", *p.Minimum))
	} else if p.Maximum != nil {
		parts = append(parts, fmt.Sprintf("<= %g", *p.Maximum))
	}
	if p.Default != nil {
		parts = append(parts, fmt.Sprintf("default %v", p.Default))
	}
	return strings.Join(parts, ", ")
}
