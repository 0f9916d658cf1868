package bank

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/quiz"
)

const sampleBank = `{
  "items": [
    {"id": "q1", "type": "single", "topics": ["Loops"], "stem": "Which keyword loops in Go?", "options": ["for", "while", "loop"]},
    {"id": 2, "type": "multi", "topics": ["creational patterns"], "stem": "Which are creational?", "options": ["Builder", "Adapter", "Singleton"], "difficulty": "hard"},
    {"id": "q3", "type": "single", "topics": ["Loops"], "stem": "Out of range", "options": ["a", "b"]},
    {"id": "q4", "type": "weird", "topics": ["Loops"], "stem": "Bad type", "options": ["a", "b"]},
    {"id": "q5", "type": "single", "topics": ["Loops"], "stem": "No key", "options": ["a", "b"]},
    {"id": "q6", "type": "single", "topics": ["Knitting"], "stem": "Unknown topic", "options": ["a", "b"]},
    {"id": "q7", "type": "single", "topics": ["Loops"], "stem": "Two answers", "options": ["a", "b"]}
  ],
  "answerKey": [
    {"id": "q1", "correct": [0], "explanation": "Go only has for."},
    {"id": "2", "correct": [0, 2]},
    {"id": "q3", "correct": [5]},
    {"id": "q4", "correct": [0]},
    {"id": "q6", "correct": [1]},
    {"id": "q7", "correct": [0, 1]},
    {"id": "orphan", "correct": [0]}
  ]
}`

func TestLoad_JSON(t *testing.T) {
	l := NewLoader(curriculum.Default())
	res, err := l.Load(strings.NewReader(sampleBank), FormatJSON, "sample.json")
	require.NoError(t, err)

	require.Len(t, res.Questions, 3)
	q1 := res.Questions[0]
	assert.Equal(t, 1, q1.ID)
	assert.Equal(t, "Loops", q1.Topic)
	assert.False(t, q1.CorrectAnswer.IsSet())
	assert.Equal(t, "for", q1.CorrectAnswer.String())
	assert.Equal(t, quiz.DifficultyMedium, q1.Difficulty)
	assert.Equal(t, "Go only has for.", q1.Explanation)

	q2 := res.Questions[1]
	assert.Equal(t, "Creational Patterns", q2.Topic)
	assert.True(t, q2.IsMultipleChoice)
	assert.True(t, q2.CorrectAnswer.Matches([]string{"Builder", "Singleton"}))
	assert.Equal(t, quiz.DifficultyHard, q2.Difficulty)

	assert.Equal(t, "Knitting", res.Questions[2].Topic)

	reasons := make(map[ItemID]string)
	for _, d := range res.Dropped {
		reasons[d.ID] = d.Reason
	}
	assert.Contains(t, reasons["q3"], "out of range")
	assert.Contains(t, reasons["q4"], "unknown type")
	assert.Equal(t, "no answer key", reasons["q5"])
	assert.Contains(t, reasons["q7"], "single item has 2")
	assert.Equal(t, "answer key without item", reasons["orphan"])
}

func TestLoad_YAML(t *testing.T) {
	doc := `
items:
  - id: a
    type: single
    topics: [Tracing]
    stem: What does a span represent?
    options: [A unit of work, A log line]
answerKey:
  - id: a
    correct: [0]
`
	res, err := NewLoader(curriculum.Default()).Load(strings.NewReader(doc), FormatYAML, "bank.yaml")
	require.NoError(t, err)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, "Tracing", res.Questions[0].Topic)
	assert.Equal(t, "A unit of work", res.Questions[0].CorrectAnswer.String())
}

func TestLoad_NoUsableEntries(t *testing.T) {
	doc := `{"items": [{"id": "x", "type": "single", "stem": "s", "options": ["a"]}], "answerKey": [{"id": "x", "correct": [0]}]}`
	_, err := NewLoader(curriculum.Default()).Load(strings.NewReader(doc), FormatJSON, "x.json")

	var ipe *quiz.InsufficientPoolError
	require.True(t, errors.As(err, &ipe), "expected InsufficientPoolError, got %v", err)
	assert.Equal(t, 0, ipe.Have)
}

func TestLoad_InvalidJSON(t *testing.T) {
	_, err := NewLoader(curriculum.Default()).Load(strings.NewReader("{"), FormatJSON, "broken.json")
	assert.Error(t, err)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.json"), []byte(sampleBank), 0o644))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []quiz.Question{{
		ID: 9, Text: "What is CI?", Options: []string{"Merging often", "Never merging"},
		CorrectAnswer: quiz.Single("Merging often"), Difficulty: quiz.DifficultyEasy, Topic: "Continuous Integration",
	}}, FormatYAML))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.yaml"), buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	l := NewLoader(curriculum.Default())
	res, err := l.LoadFiles([]string{dir})
	require.NoError(t, err)
	require.Len(t, res.Questions, 4)

	ids := make(map[int]bool)
	for _, q := range res.Questions {
		assert.False(t, ids[q.ID], "duplicate id %d", q.ID)
		ids[q.ID] = true
	}
	assert.Equal(t, "Continuous Integration", res.Questions[3].Topic)
}

func TestLoadFiles_NoPaths(t *testing.T) {
	_, err := NewLoader(curriculum.Default()).LoadFiles(nil)
	var verr *quiz.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, "banks", verr.Field)

	_, err = NewLoader(curriculum.Default()).LoadFiles([]string{t.TempDir()})
	assert.True(t, errors.As(err, &verr))
}

func TestLoadFiles_MissingFile(t *testing.T) {
	_, err := NewLoader(curriculum.Default()).LoadFiles([]string{filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}

func TestWriteThenLoad(t *testing.T) {
	questions := []quiz.Question{
		{ID: 1, Text: "Pick the structural patterns", Options: []string{"Adapter", "Facade", "Builder"},
			CorrectAnswer: quiz.Set("Adapter", "Facade"), IsMultipleChoice: true, Difficulty: quiz.DifficultyHard,
			Explanation: "Builder is creational.", Topic: "Structural Patterns"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, questions, FormatJSON))
	assert.Contains(t, buf.String(), `"answerKey"`)

	res, err := NewLoader(curriculum.Default()).Load(&buf, FormatJSON, "gen.json")
	require.NoError(t, err)
	require.Len(t, res.Questions, 1)
	got := res.Questions[0]
	assert.Equal(t, questions[0].Text, got.Text)
	assert.True(t, got.CorrectAnswer.Matches([]string{"Facade", "Adapter"}))
	assert.Equal(t, "Builder is creational.", got.Explanation)
	assert.Equal(t, "Structural Patterns", got.Topic)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("bank.YML"))
	assert.Equal(t, FormatYAML, FormatFromPath("dir/bank.yaml"))
	assert.Equal(t, FormatJSON, FormatFromPath("bank.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("bank"))
}
