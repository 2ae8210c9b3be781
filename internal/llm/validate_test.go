package llm

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionSetSchema() *Schema {
	return &Schema{
		Name:        "question-set",
		Description: "A set of multiple-choice questions",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"questions": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"text": map[string]any{"type": "string"},
							"answers": map[string]any{
								"type": "array",
								"items": map[string]any{
									"type": "object",
									"properties": map[string]any{
										"text":       map[string]any{"type": "string"},
										"is_correct": map[string]any{"type": "boolean"},
									},
									"required": []any{"text", "is_correct"},
								},
							},
							"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
						},
						"required": []any{"text", "answers"},
					},
				},
			},
			"required": []any{"questions"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"questions":[{"text":"Q","answers":[{"text":"A","is_correct":true}],"difficulty":"easy"}]}`, false},
		{"optional field omitted", `{"questions":[{"text":"Q","answers":[]}]}`, false},
		{"missing required", `{"questions":[{"text":"Q"}]}`, true},
		{"wrong type", `{"questions":[{"text":"Q","answers":[{"text":"A","is_correct":"yes"}]}]}`, true},
		{"invalid enum", `{"questions":[{"text":"Q","answers":[],"difficulty":"extreme"}]}`, true},
		{"empty questions", `{"questions":[]}`, true},
		{"malformed JSON", `{not json}`, true},
		{"empty response", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(questionSetSchema(), json.RawMessage(tt.raw))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var invErr *ErrInvalidResponse
			require.True(t, errors.As(err, &invErr), "got %T (%v)", err, err)
			assert.Equal(t, tt.raw, string(invErr.Content))
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	assert.NoError(t, validateResponse(nil, json.RawMessage(`not even json`)))
}

func TestValidateResponse_SameNameDifferentDefinition(t *testing.T) {
	loose := &Schema{Name: "shared", Definition: map[string]any{"type": "object"}}
	strict := &Schema{Name: "shared", Definition: map[string]any{"type": "object", "required": []any{"questions"}}}

	raw := json.RawMessage(`{"other":1}`)
	require.NoError(t, validateResponse(loose, raw))
	assert.Error(t, validateResponse(strict, raw))
}
