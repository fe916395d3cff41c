package gemini

import "exam-drill-service/internal/domain"

// ResponseSchema is the structured-output schema sent as responseSchema.
func ResponseSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"quiz": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"id": map[string]any{"type": "STRING"},
						"type": map[string]any{
							"type": "STRING",
							"enum": []string{string(domain.QuestionMCQ), string(domain.QuestionMSQ), string(domain.QuestionNAT)},
						},
						"text": map[string]any{"type": "STRING"},
						"options": map[string]any{
							"type":        "ARRAY",
							"items":       map[string]any{"type": "STRING"},
							"description": "Provide 4 options for MCQ/MSQ. Leave empty for NAT.",
						},
						"correctAnswer": map[string]any{
							"type":        "ARRAY",
							"items":       map[string]any{"type": "STRING"},
							"description": "The correct option text(s) or the numerical value for NAT.",
						},
						"explanation": map[string]any{"type": "STRING"},
					},
					"required": []string{"id", "type", "text", "correctAnswer", "explanation"},
				},
			},
		},
		"required": []string{"quiz"},
	}
}
