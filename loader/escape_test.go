package loader

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeCopy(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tab", "a\tb", `a\tb`},
		{"newline", "a\nb", `a\nb`},
		{"carriage return", "a\rb", `a\rb`},
		{"backslash", `a\b`, `a\\b`},
		{"backslash before tab", "a\\\tb", `a\\\tb`},
		{"everything", "\\\t\n", `\\\t\n`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeCopy(tt.in))
		})
	}
}

func TestEscapeCypherString(t *testing.T) {
	assert.Equal(t, `it\'s`, escapeCypherString("it's"))
	assert.Equal(t, `a\\b`, escapeCypherString(`a\b`))
	assert.Equal(t, `a\\\'b`, escapeCypherString(`a\'b`))
}

func TestFormatCypherValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "hello", "'hello'"},
		{"string with quote", "it's", `'it\'s'`},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"nil", nil, "null"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"float", 1.5, "1.5"},
		{"json number", json.Number("9007199254740993"), "9007199254740993"},
		{"list", []any{1, "two", true}, "[1, 'two', true]"},
		{"nested map", map[string]any{"k": "v"}, `'{"k":"v"}'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCypherValue(tt.value))
		})
	}
}

func TestFormatCypherProperties(t *testing.T) {
	assert.Equal(t, "{}", formatCypherProperties(nil))
	assert.Equal(t, "{}", formatCypherProperties(Properties{}))

	props := Properties{"b": 2, "a": "one", "c": true}
	// Keys come out sorted, so the rendering is stable.
	assert.Equal(t, "{`a`: 'one', `b`: 2, `c`: true}", formatCypherProperties(props))
}

func TestPropertiesJSON(t *testing.T) {
	encoded, err := propertiesJSON("n1", Properties{"name": "x", "active": true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"n1","name":"x","active":true}`, encoded)

	// The bag's own id key is overridden by the logical id.
	encoded, err = propertiesJSON("n1", Properties{"id": "other"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"n1"}`, encoded)

	// encoding/json sorts keys, so re-encoding is byte-stable.
	again, err := propertiesJSON("n1", Properties{"active": true, "name": "x"})
	require.NoError(t, err)
	first, err := propertiesJSON("n1", Properties{"name": "x", "active": true})
	require.NoError(t, err)
	assert.Equal(t, first, again)
}
