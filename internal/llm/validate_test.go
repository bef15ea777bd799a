package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adviceTestSchema() *Schema {
	return &Schema{
		Name:        "test-advice",
		Description: "Advice for one skill",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"key":      map[string]any{"type": "string"},
				"priority": map[string]any{"type": "integer", "minimum": 1},
				"level":    map[string]any{"type": "string", "enum": []any{"low", "mid", "high"}},
				"practice": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items":    map[string]any{"type": "string"},
				},
			},
			"required": []any{"key", "priority"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"key":"grammar:tense","priority":1,"level":"low","practice":["drill"]}`, false},
		{"valid without optional", `{"key":"grammar:tense","priority":2}`, false},
		{"missing required", `{"key":"grammar:tense"}`, true},
		{"wrong type", `{"key":"grammar:tense","priority":"first"}`, true},
		{"enum violation", `{"key":"grammar:tense","priority":1,"level":"extreme"}`, true},
		{"empty array", `{"key":"grammar:tense","priority":1,"practice":[]}`, true},
		{"array item type", `{"key":"grammar:tense","priority":1,"practice":[1,2]}`, true},
		{"malformed JSON", `{not json}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(adviceTestSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var invErr *ErrInvalidResponse
			require.ErrorAs(t, err, &invErr)
			assert.Equal(t, tt.raw, string(invErr.Content))
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)))
}

func TestValidateResponse_ReportsSchemaName(t *testing.T) {
	err := validateResponse(adviceTestSchema(), json.RawMessage(`{"key":"a"}`))
	var invErr *ErrInvalidResponse
	require.ErrorAs(t, err, &invErr)
	assert.Contains(t, invErr.Err.Error(), "test-advice")
}
