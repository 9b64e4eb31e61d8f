package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["name", "max"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "max":  {"type": "integer", "minimum": 1}
  }
}`

func TestSchema_ValidateJSON(t *testing.T) {
	schema, err := Compile([]byte(testSchema))
	require.NoError(t, err)

	tests := []struct {
		name      string
		doc       string
		wantValid bool
		wantField string
	}{
		{name: "valid", doc: `{"name":"Chess Club","max":12}`, wantValid: true},
		{name: "missing max", doc: `{"name":"Chess Club"}`, wantField: "(root)"},
		{name: "empty name", doc: `{"name":"","max":3}`, wantField: "name"},
		{name: "zero max", doc: `{"name":"x","max":0}`, wantField: "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.ValidateJSON([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if !tt.wantValid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.wantField, result.Errors[0].Field)
				assert.Contains(t, result.Error(), tt.wantField)
			}
		})
	}
}

func TestSchema_Errors(t *testing.T) {
	_, err := Compile([]byte(`{"type":`))
	assert.Error(t, err)

	schema, err := Compile([]byte(testSchema))
	require.NoError(t, err)
	_, err = schema.ValidateJSON([]byte(`{not json`))
	assert.Error(t, err)
}
