package bank

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizdeck/internal/quiz"
)

// Build converts questions into a bank document. Item ids are the
// question ids.
func Build(questions []quiz.Question) Document {
	doc := Document{
		Items:     make([]Item, 0, len(questions)),
		AnswerKey: make([]AnswerKey, 0, len(questions)),
	}
	for _, q := range questions {
		id := idString(q.ID)
		typ := TypeSingle
		if q.IsMultipleChoice || q.CorrectAnswer.IsSet() {
			typ = TypeMulti
		}

		var correct []int
		for _, v := range q.CorrectAnswer.Values() {
			if i := slices.Index(q.Options, v); i >= 0 {
				correct = append(correct, i)
			}
		}

		var topics []string
		if q.Topic != "" {
			topics = []string{q.Topic}
		}

		doc.Items = append(doc.Items, Item{
			ID:         id,
			Type:       typ,
			Topics:     topics,
			Stem:       q.Text,
			Options:    q.Options,
			Difficulty: string(q.Difficulty),
		})
		doc.AnswerKey = append(doc.AnswerKey, AnswerKey{
			ID:          id,
			Correct:     correct,
			Explanation: q.Explanation,
		})
	}
	return doc
}

// Write encodes questions as a bank document.
func Write(w io.Writer, questions []quiz.Question, format Format) error {
	doc := Build(questions)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode bank: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode bank: %w", err)
		}
		return nil
	}
}
