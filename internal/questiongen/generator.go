package questiongen

import (
	"context"

	"github.com/abhisek/quizdeck/internal/quiz"
)

// Request describes one question to generate.
type Request struct {
	// Topic is the leaf topic title the question is about.
	Topic string

	// TopicPath is the curriculum path of the topic, for prompt context.
	TopicPath string

	Difficulty quiz.Difficulty

	// StyleAligned asks the model to follow Examples and implies the
	// strict contract.
	StyleAligned bool
	Examples     []quiz.Question

	// PriorQuestions contains the text of questions already produced in
	// this run. Used for deduplication in the prompt.
	PriorQuestions []string
}

// Generator produces quiz questions.
type Generator interface {
	// Generate produces a single validated question. Failures are
	// *MalformedResponse, *MalformedQuestion or a provider error.
	Generate(ctx context.Context, req Request) (*quiz.Question, error)
}
