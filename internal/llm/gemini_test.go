package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiModelAliases(t *testing.T) {
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-2.5-pro", resolveModel("gemini-pro", geminiModels))
	assert.Equal(t, "gemini-2.5-flash-lite", resolveModel("gemini-lite", geminiModels))
	assert.Equal(t, "gemini-1.5-flash-8b", resolveModel("gemini-1.5-flash-8b", geminiModels))
}

func TestBuildGeminiSchema_QuestionShape(t *testing.T) {
	def := map[string]any{
		"type":        "object",
		"description": "one multiple choice question",
		"properties": map[string]any{
			"text": map[string]any{"type": "string"},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": float64(2),
				"maxItems": float64(6),
			},
			"correct": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
			"difficulty": map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
			"multi":      map[string]any{"type": "boolean"},
		},
		"required": []any{"text", "options", "correct"},
	}

	schema := buildGeminiSchema(def)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, "one multiple choice question", schema.Description)
	require.Len(t, schema.Properties, 5)
	assert.ElementsMatch(t, []string{"text", "options", "correct"}, schema.Required)

	options := schema.Properties["options"]
	assert.Equal(t, genai.TypeArray, options.Type)
	assert.Equal(t, genai.TypeString, options.Items.Type)
	require.NotNil(t, options.MinItems)
	require.NotNil(t, options.MaxItems)
	assert.Equal(t, int64(2), *options.MinItems)
	assert.Equal(t, int64(6), *options.MaxItems)

	assert.Equal(t, genai.TypeInteger, schema.Properties["correct"].Items.Type)
	assert.Nil(t, schema.Properties["correct"].MinItems)
	assert.Equal(t, []string{"easy", "medium", "hard"}, schema.Properties["difficulty"].Enum)
	assert.Equal(t, genai.TypeBoolean, schema.Properties["multi"].Type)
}
