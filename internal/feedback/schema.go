package feedback

import "github.com/chaspy/toeic-assessment-poc/internal/llm"

// AdviceSchema defines the JSON schema for weak-skill advice.
var AdviceSchema = &llm.Schema{
	Name:        "skill-advice",
	Description: "Reading advice for each of the learner's weakest skills",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"advice": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"key": map[string]any{
							"type":        "string",
							"description": "The skill tag exactly as given",
						},
						"label": map[string]any{
							"type":        "string",
							"description": "Short learner-facing name of the skill (2-5 words)",
						},
						"meaning": map[string]any{
							"type":        "string",
							"description": "One sentence on what the skill is",
						},
						"read": map[string]any{
							"type":        "string",
							"description": "One concrete tip for reading questions that test this skill",
						},
						"practice": map[string]any{
							"type":        "array",
							"minItems":    2,
							"maxItems":    4,
							"items":       map[string]any{"type": "string"},
							"description": "2-4 concrete practice actions",
						},
					},
					"required":             []any{"key", "label", "meaning", "read", "practice"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"advice"},
		"additionalProperties": false,
	},
}

// ExplanationSchema defines the JSON schema for a single item explanation.
var ExplanationSchema = &llm.Schema{
	Name:        "item-explanation",
	Description: "Short explanation of why the correct option is right",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "2-4 sentences naming the clue in the sentence or passage",
			},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}
