package tools

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"falcon-mcp/internal/api"
	"falcon-mcp/internal/registry"
)

const (
	defaultLimit = 100
	maxLimit     = 5000
)

// queryParameters are shared by every FQL query tool.
func queryParameters(sortExample string) []registry.Parameter {
	return []registry.Parameter{
		{
			Name:        "filter",
			Type:        registry.TypeString,
			Description: "FQL filter string",
		},
		{
			Name:        "limit",
			Type:        registry.TypeInteger,
			Description: "Maximum number of results (1-5000)",
			Default:     defaultLimit,
			Min:         registry.Bound(1),
			Max:         registry.Bound(maxLimit),
		},
		{
			Name:        "offset",
			Type:        registry.TypeInteger,
			Description: "Offset for pagination",
			Default:     0,
			Min:         registry.Bound(0),
		},
		{
			Name:        "sort",
			Type:        registry.TypeString,
			Description: "Sort order (e.g. \"" + sortExample + "\")",
		},
	}
}

// idsParameter declares a required, non-empty list of entity ids.
func idsParameter(name, description string) registry.Parameter {
	return registry.Parameter{
		Name:        name,
		Type:        registry.TypeArray,
		Description: description,
		Required:    true,
		ItemType:    registry.TypeString,
		MinItems:    1,
	}
}

// queryOperation is a GET whose query string carries filter, limit, offset
// and sort. Empty filter and sort and a zero offset are omitted.
func queryOperation(path string) api.Operation {
	return api.Operation{
		Method: http.MethodGet,
		Path:   path,
		Build: func(params map[string]interface{}) (api.Request, error) {
			q := url.Values{}
			if s := stringParam(params, "filter"); s != "" {
				q.Set("filter", s)
			}
			if n, ok := intParam(params, "limit"); ok && n > 0 {
				q.Set("limit", strconv.Itoa(n))
			}
			if n, ok := intParam(params, "offset"); ok && n > 0 {
				q.Set("offset", strconv.Itoa(n))
			}
			if s := stringParam(params, "sort"); s != "" {
				q.Set("sort", s)
			}
			return api.Request{Query: q}, nil
		},
	}
}

// idsQueryOperation sends the ids parameter as a comma separated ids query
// value.
func idsQueryOperation(method, path, param string) api.Operation {
	return api.Operation{
		Method: method,
		Path:   path,
		Build: func(params map[string]interface{}) (api.Request, error) {
			ids := stringsParam(params, param)
			if len(ids) == 0 {
				return api.Request{}, api.NewValidationError([]api.FieldError{{Field: param, Message: "is required"}})
			}
			return api.Request{Query: url.Values{"ids": {strings.Join(ids, ",")}}}, nil
		},
	}
}

// idsBodyOperation posts the ids parameter as {"ids": [...]}.
func idsBodyOperation(path, param string) api.Operation {
	return api.Operation{
		Method: http.MethodPost,
		Path:   path,
		Build: func(params map[string]interface{}) (api.Request, error) {
			ids := stringsParam(params, param)
			if len(ids) == 0 {
				return api.Request{}, api.NewValidationError([]api.FieldError{{Field: param, Message: "is required"}})
			}
			return api.Request{Body: map[string]interface{}{"ids": ids}}, nil
		},
	}
}

func stringParam(params map[string]interface{}, name string) string {
	s, _ := params[name].(string)
	return strings.TrimSpace(s)
}

func intParam(params map[string]interface{}, name string) (int, bool) {
	switch v := params[name].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

func boolParam(params map[string]interface{}, name string) (bool, bool) {
	b, ok := params[name].(bool)
	return b, ok
}

func stringsParam(params map[string]interface{}, name string) []string {
	switch v := params[name].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
