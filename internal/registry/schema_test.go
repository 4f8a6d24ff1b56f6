package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"falcon-mcp/internal/api"
)

func iocDescriptor() ToolDescriptor {
	return ToolDescriptor{
		Name: "create_ioc",
		Parameters: []Parameter{
			{Name: "type", Type: TypeString, Required: true, Enum: []string{"domain", "ipv4", "md5"}},
			{Name: "value", Type: TypeString, Required: true},
			{Name: "platforms", Type: TypeArray, Required: true, ItemEnum: []string{"Windows", "Mac", "Linux"}, MinItems: 1},
			{Name: "applied_globally", Type: TypeBoolean, Default: false},
			{Name: "limit", Type: TypeInteger, Default: 100, Min: Bound(1), Max: Bound(5000)},
			{Name: "score", Type: TypeNumber},
			{Name: "meta", Type: TypeObject},
		},
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	apiErr, ok := api.AsError(err)
	require.True(t, ok, "expected *api.Error, got %T", err)
	require.Equal(t, api.KindValidation, apiErr.Kind)
	names := make([]string, 0, len(apiErr.Fields))
	for _, f := range apiErr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestValidate_AppliesDefaultsAndNormalizes(t *testing.T) {
	params := map[string]interface{}{
		"type":      "domain",
		"value":     "evil.example",
		"platforms": []interface{}{"Windows", "Linux"},
		"score":     json.Number("7.5"),
	}

	out, err := Validate(iocDescriptor(), params)
	require.NoError(t, err)

	assert.Equal(t, "domain", out["type"])
	assert.Equal(t, []string{"Windows", "Linux"}, out["platforms"])
	assert.Equal(t, false, out["applied_globally"])
	assert.Equal(t, 100, out["limit"])
	assert.Equal(t, 7.5, out["score"])
	_, hasMeta := out["meta"]
	assert.False(t, hasMeta)
}

func TestValidate_IntegerFromFloat(t *testing.T) {
	out, err := Validate(iocDescriptor(), map[string]interface{}{
		"type": "md5", "value": "x", "platforms": []string{"Mac"}, "limit": float64(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, out["limit"])
}

func TestValidate_IntegerMessages(t *testing.T) {
	desc := ToolDescriptor{
		Name:       "query_hosts",
		Parameters: []Parameter{{Name: "offset", Type: TypeInteger}},
	}

	tests := []struct {
		name    string
		value   interface{}
		message string
	}{
		{name: "wrong type", value: "ten", message: "must be an integer, got string"},
		{name: "too large", value: json.Number("1e20"), message: "is out of range"},
		{name: "too small", value: float64(-1e20), message: "is out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(desc, map[string]interface{}{"offset": tt.value})
			require.Error(t, err)
			apiErr, ok := api.AsError(err)
			require.True(t, ok)
			require.Len(t, apiErr.Fields, 1)
			assert.Equal(t, tt.message, apiErr.Fields[0].Message)
		})
	}
}

func TestArticle(t *testing.T) {
	assert.Equal(t, "an integer", article("integer"))
	assert.Equal(t, "an object", article("object"))
	assert.Equal(t, "a number", article("number"))
}

func TestValidate_ListsEveryOffendingField(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]interface{}
		expected []string
	}{
		{
			name:     "all required missing",
			params:   map[string]interface{}{},
			expected: []string{"platforms", "type", "value"},
		},
		{
			name: "wrong types and bounds",
			params: map[string]interface{}{
				"type":             "sha1",
				"value":            42.0,
				"platforms":        []interface{}{"Windows", "BeOS"},
				"applied_globally": "yes",
				"limit":            0.0,
				"score":            "high",
				"meta":             []interface{}{},
			},
			expected: []string{"applied_globally", "limit", "meta", "platforms", "score", "type", "value"},
		},
		{
			name: "unknown parameter reported with missing ones",
			params: map[string]interface{}{
				"type":  "ipv4",
				"bogus": true,
			},
			expected: []string{"bogus", "platforms", "value"},
		},
		{
			name: "non integer limit and empty platforms",
			params: map[string]interface{}{
				"type": "ipv4", "value": "1.2.3.4", "platforms": []interface{}{}, "limit": 2.5,
			},
			expected: []string{"limit", "platforms"},
		},
		{
			name: "null counts as missing",
			params: map[string]interface{}{
				"type": nil, "value": "x", "platforms": []string{"Mac"},
			},
			expected: []string{"type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(iocDescriptor(), tt.params)
			require.Error(t, err)
			assert.Equal(t, tt.expected, fieldNames(t, err))
		})
	}
}

func TestValidate_MessageNamesEveryField(t *testing.T) {
	_, err := Validate(iocDescriptor(), map[string]interface{}{"limit": 9000.0})
	require.Error(t, err)

	msg := err.Error()
	for _, field := range []string{"type", "value", "platforms", "limit"} {
		assert.Contains(t, msg, field)
	}
	assert.Contains(t, msg, "must be <= 5000")
}

func TestValidate_NilParams(t *testing.T) {
	desc := ToolDescriptor{Name: "query", Parameters: []Parameter{
		{Name: "offset", Type: TypeInteger, Default: 0},
	}}

	out, err := Validate(desc, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"offset": 0}, out)
}
