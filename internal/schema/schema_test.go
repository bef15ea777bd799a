package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tagsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"tags": map[string]any{
			"type":        "array",
			"uniqueItems": true,
			"items":       map[string]any{"type": "string"},
		},
	},
	"required": []string{"tags"},
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"tags":["a","b"]}`, false},
		{"missing required", `{}`, true},
		{"duplicate items", `{"tags":["a","a"]}`, true},
		{"wrong item type", `{"tags":[1]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate("test-tags", tagsSchema, decode(t, tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompile_CachesByName(t *testing.T) {
	first, err := Compile("test-cache", tagsSchema)
	require.NoError(t, err)
	second, err := Compile("test-cache", map[string]any{"type": "string"})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestCompile_BadDefinition(t *testing.T) {
	_, err := Compile("test-bad", map[string]any{"type": 12})
	assert.Error(t, err)
}
