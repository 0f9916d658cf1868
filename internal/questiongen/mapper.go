package questiongen

import (
	"sync/atomic"

	"github.com/abhisek/quizdeck/internal/quiz"
)

// IDAssigner hands out question ids that are unique within a run.
type IDAssigner interface {
	NextID() int
}

// Counter is an IDAssigner counting up from its start value.
type Counter struct {
	next atomic.Int64
}

// NewCounter returns a Counter whose first id is start.
func NewCounter(start int) *Counter {
	c := &Counter{}
	c.next.Store(int64(start))
	return c
}

// NextID returns the next id.
func (c *Counter) NextID() int {
	return int(c.next.Add(1) - 1)
}

// MapToQuestion turns a validated candidate into a Question. Option labels
// are stripped and answer letters are resolved to option text.
func MapToQuestion(c *Candidate, topic string, difficulty quiz.Difficulty, ids IDAssigner) quiz.Question {
	options := make([]string, len(c.Options))
	for i, o := range c.Options {
		options[i] = StripOptionPrefix(o)
	}

	correct := make([]string, 0, len(c.AnswerKeys))
	for _, key := range c.AnswerKeys {
		correct = append(correct, options[key[0]-'A'])
	}

	answer := quiz.Set(correct...)
	if len(correct) == 1 && !c.IsMultipleChoice {
		answer = quiz.Single(correct[0])
	}

	return quiz.Question{
		ID:               ids.NextID(),
		Text:             c.Question,
		Options:          options,
		CorrectAnswer:    answer,
		IsMultipleChoice: c.IsMultipleChoice,
		Difficulty:       difficulty,
		Explanation:      c.Explanation,
		Topic:            topic,
	}
}
