package questiongen

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/quizdeck/internal/llm"
)

// Candidate is the question object a model is asked to produce.
type Candidate struct {
	Question         string   `json:"question" jsonschema:"required,description=The question text shown to the learner"`
	Options          []string `json:"options" jsonschema:"required,description=Answer options prefixed with A) B) C) and so on"`
	AnswerKeys       []string `json:"answer_keys" jsonschema:"required,description=Letters of the correct options such as A or C"`
	IsMultipleChoice bool     `json:"isMultipleChoice" jsonschema:"required,description=True when more than one option is correct"`
	Explanation      string   `json:"explanation" jsonschema:"required,description=Why the correct options are correct"`
}

// reflectCandidate returns the JSON schema of Candidate as a plain map.
func reflectCandidate() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Anonymous:                 true,
	}
	schema := reflector.Reflect(&Candidate{})

	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("marshal candidate schema: %v", err))
	}
	var def map[string]any
	if err := json.Unmarshal(data, &def); err != nil {
		panic(fmt.Sprintf("unmarshal candidate schema: %v", err))
	}
	delete(def, "$schema")
	delete(def, "$id")
	return def
}

// CandidateSchema is sent to providers when native structured output is
// enabled.
var CandidateSchema = sync.OnceValue(func() *llm.Schema {
	return &llm.Schema{
		Name:        "quiz-question",
		Description: "A single multiple-choice quiz question with lettered answer keys",
		Definition:  reflectCandidate(),
	}
})

// shapeSchema checks types only. Presence and ranges are reported by the
// named contract rules, so required and additionalProperties are dropped.
var shapeSchema = sync.OnceValues(func() (*santhosh.Schema, error) {
	def := reflectCandidate()
	delete(def, "required")
	delete(def, "additionalProperties")

	// The compiler expects a freshly decoded value.
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal shape schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse shape schema: %w", err)
	}

	c := santhosh.NewCompiler()
	const url = "schema://quiz-question-shape.json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(url)
})
