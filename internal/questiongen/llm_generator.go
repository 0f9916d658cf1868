package questiongen

import (
	"context"
	"fmt"

	"github.com/abhisek/quizdeck/internal/llm"
	"github.com/abhisek/quizdeck/internal/quiz"
)

// Purpose is the LLM event label for question generation.
const Purpose = "question-gen"

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	ids      IDAssigner
}

// New creates a new LLMGenerator with the given provider and config.
// Question ids start at 1.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, ids: NewCounter(1)}
}

// WithIDs returns a copy of the generator drawing ids from ids.
func (g *LLMGenerator) WithIDs(ids IDAssigner) *LLMGenerator {
	cp := *g
	cp.ids = ids
	return &cp
}

// Generate runs provider, extraction, validation and mapping for one
// question. There is no retry at this level.
func (g *LLMGenerator) Generate(ctx context.Context, req Request) (*quiz.Question, error) {
	ctx = llm.WithTopic(llm.WithPurpose(ctx, Purpose), req.Topic)

	llmReq := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req, g.config)},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}
	if g.config.StructuredOutput {
		llmReq.Schema = CandidateSchema()
	}

	resp, err := g.provider.Generate(ctx, llmReq)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	obj, err := ExtractJSON(string(resp.Content))
	if err != nil {
		return nil, err
	}

	c, err := Validate(obj, g.config.contract(req))
	if err != nil {
		return nil, err
	}

	q := MapToQuestion(c, req.Topic, req.Difficulty, g.ids)
	return &q, nil
}
