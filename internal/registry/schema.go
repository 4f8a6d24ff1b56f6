package registry

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"falcon-mcp/internal/api"
)

// ParamType is the declared JSON type of a parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
)

func (t ParamType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeInteger, TypeBoolean, TypeArray, TypeObject:
		return true
	}
	return false
}

// Parameter declares one named parameter of a tool.
type Parameter struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     interface{}

	// Enum restricts string values to the listed literals.
	Enum []string

	// ItemType and ItemEnum describe array items. ItemType defaults to string.
	ItemType ParamType
	ItemEnum []string
	MinItems int

	// Min and Max bound numeric values inclusively.
	Min *float64
	Max *float64
}

// Bound is a helper for Parameter.Min and Parameter.Max.
func Bound(v float64) *float64 {
	return &v
}

func (p Parameter) itemType() ParamType {
	if p.ItemType == "" {
		return TypeString
	}
	return p.ItemType
}

// Validate checks params against the descriptor's schema. It returns the
// normalized parameters with defaults applied, or a ValidationError listing
// every offending field sorted by name.
//
// Numbers are normalized to float64 and integers to int; string arrays to
// []string. JSON null is treated as an absent value.
func Validate(desc ToolDescriptor, params map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(desc.Parameters))
	var fields []api.FieldError

	for name := range params {
		if _, ok := desc.Parameter(name); !ok {
			fields = append(fields, api.FieldError{Field: name, Message: "unknown parameter"})
		}
	}

	for _, p := range desc.Parameters {
		raw, present := params[p.Name]
		if !present || raw == nil {
			if p.Required {
				fields = append(fields, api.FieldError{Field: p.Name, Message: "is required"})
			} else if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}

		value, msg := p.check(raw)
		if msg != "" {
			fields = append(fields, api.FieldError{Field: p.Name, Message: msg})
			continue
		}
		out[p.Name] = value
	}

	if len(fields) > 0 {
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
		return nil, api.NewValidationError(fields)
	}
	return out, nil
}

// check validates one present value and returns its normalized form or a
// message describing the problem.
func (p Parameter) check(raw interface{}) (interface{}, string) {
	switch p.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Sprintf("must be a string, got %s", jsonType(raw))
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, fmt.Sprintf("must be one of %s", strings.Join(p.Enum, ", "))
		}
		return s, ""

	case TypeNumber, TypeInteger:
		n, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Sprintf("must be %s, got %s", article(string(p.Type)), jsonType(raw))
		}
		if p.Type == TypeInteger && n != math.Trunc(n) {
			return nil, "must be an integer"
		}
		if p.Type == TypeInteger && (n < math.MinInt || n >= math.MaxInt) {
			return nil, "is out of range"
		}
		if p.Min != nil && n < *p.Min {
			return nil, fmt.Sprintf("must be >= %g", *p.Min)
		}
		if p.Max != nil && n > *p.Max {
			return nil, fmt.Sprintf("must be <= %g", *p.Max)
		}
		if p.Type == TypeInteger {
			return int(n), ""
		}
		return n, ""

	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Sprintf("must be a boolean, got %s", jsonType(raw))
		}
		return b, ""

	case TypeArray:
		return p.checkArray(raw)

	case TypeObject:
		m, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Sprintf("must be an object, got %s", jsonType(raw))
		}
		return m, ""
	}
	return nil, fmt.Sprintf("unsupported parameter type %q", p.Type)
}

// article prefixes a type name with "a" or "an".
func article(word string) string {
	if word != "" && strings.ContainsRune("aeiou", rune(word[0])) {
		return "an " + word
	}
	return "a " + word
}

func (p Parameter) checkArray(raw interface{}) (interface{}, string) {
	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case []string:
		items = make([]interface{}, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		return nil, fmt.Sprintf("must be an array, got %s", jsonType(raw))
	}

	if len(items) < p.MinItems {
		return nil, fmt.Sprintf("must contain at least %d item(s)", p.MinItems)
	}

	item := Parameter{Name: p.Name, Type: p.itemType(), Enum: p.ItemEnum}
	var problems []string
	normalized := make([]interface{}, 0, len(items))
	for i, it := range items {
		v, msg := item.check(it)
		if msg != "" {
			problems = append(problems, fmt.Sprintf("item %d %s", i, msg))
			continue
		}
		normalized = append(normalized, v)
	}
	if len(problems) > 0 {
		return nil, strings.Join(problems, "; ")
	}

	if item.Type == TypeString {
		out := make([]string, len(normalized))
		for i, v := range normalized {
			out[i] = v.(string)
		}
		return out, ""
	}
	return normalized, ""
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func jsonType(raw interface{}) string {
	switch raw.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []interface{}, []string:
		return "array"
	case map[string]interface{}:
		return "object"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", raw)
}
