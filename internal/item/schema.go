package item

// poolSchema is the JSON Schema every pool document must satisfy after
// normalization to the {schema_version, items} form.
var poolSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"schema_version": map[string]any{
			"type": "string",
		},
		"items": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    itemSchema,
		},
	},
	"required":             []any{"schema_version", "items"},
	"additionalProperties": false,
}

var itemSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"part": map[string]any{
			"type": "string",
			"enum": []any{string(PartR5), string(PartR7)},
		},
		"stem": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"options": map[string]any{
			"type":     "array",
			"minItems": 2,
			"items":    map[string]any{"type": "string"},
		},
		"answer": map[string]any{
			"type":    "integer",
			"minimum": 0,
		},
		"skills": map[string]any{
			"type":        "array",
			"uniqueItems": true,
			"items":       map[string]any{"type": "string", "minLength": 1},
		},
		"difficulty": map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
		"time_limit_sec": map[string]any{
			"type":             "integer",
			"exclusiveMinimum": 0,
		},
		"explanation": map[string]any{
			"type": "string",
		},
		"rationales": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
	"required":             []any{"id", "part", "stem", "options", "answer", "skills", "difficulty", "time_limit_sec"},
	"additionalProperties": false,
}
