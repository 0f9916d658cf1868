package questiongen

import (
	"errors"
	"slices"
	"testing"

	"github.com/abhisek/quizdeck/internal/quiz"
)

func candidateObject(mutate func(m map[string]any)) map[string]any {
	m := map[string]any{
		"question":         "Which keyword starts a loop in Go?",
		"options":          []any{"A) for", "B) while", "C) loop", "D) repeat"},
		"answer_keys":      []any{"A"},
		"isMultipleChoice": false,
		"explanation":      "Go has only the for loop.",
	}
	if mutate != nil {
		mutate(m)
	}
	return m
}

func TestValidate_Valid(t *testing.T) {
	c, err := Validate(candidateObject(nil), StrictContract())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Question != "Which keyword starts a loop in Go?" || len(c.Options) != 4 {
		t.Errorf("unexpected candidate: %+v", c)
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name     string
		contract Contract
		mutate   func(m map[string]any)
		rule     string
	}{
		{"options wrong type", DefaultContract(), func(m map[string]any) { m["options"] = "A) for" }, RuleShape},
		{"flag wrong type", DefaultContract(), func(m map[string]any) { m["isMultipleChoice"] = "no" }, RuleShape},
		{"missing question", DefaultContract(), func(m map[string]any) { delete(m, "question") }, RuleQuestionText},
		{"blank question", DefaultContract(), func(m map[string]any) { m["question"] = "   " }, RuleQuestionText},
		{"one option", DefaultContract(), func(m map[string]any) { m["options"] = []any{"A) for"} }, RuleOptionsCount},
		{"strict needs four", StrictContract(), func(m map[string]any) { m["options"] = []any{"A) for", "B) while", "C) loop"} }, RuleOptionsCount},
		{"seven options", DefaultContract(), func(m map[string]any) {
			m["options"] = []any{"A) 1", "B) 2", "C) 3", "D) 4", "E) 5", "F) 6", "G) 7"}
		}, RuleOptionsCount},
		{"no keys", DefaultContract(), func(m map[string]any) { m["answer_keys"] = []any{} }, RuleAnswerKeys},
		{"lowercase key", DefaultContract(), func(m map[string]any) { m["answer_keys"] = []any{"a"} }, RuleAnswerKeyFormat},
		{"word key", DefaultContract(), func(m map[string]any) { m["answer_keys"] = []any{"for"} }, RuleAnswerKeyFormat},
		{"key beyond F", DefaultContract(), func(m map[string]any) { m["answer_keys"] = []any{"G"} }, RuleAnswerKeyFormat},
		{"key out of range", DefaultContract(), func(m map[string]any) { m["answer_keys"] = []any{"E"} }, RuleAnswerKeyRange},
		{"two keys single flag", DefaultContract(), func(m map[string]any) { m["answer_keys"] = []any{"A", "B"} }, RuleSingleAnswer},
		{"duplicate keys", DefaultContract(), func(m map[string]any) {
			m["isMultipleChoice"] = true
			m["answer_keys"] = []any{"A", "A"}
		}, RuleAnswerCollision},
		{"colliding option text", DefaultContract(), func(m map[string]any) {
			m["isMultipleChoice"] = true
			m["options"] = []any{"A) for", "B) for", "C) loop"}
			m["answer_keys"] = []any{"A", "B"}
		}, RuleAnswerCollision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(candidateObject(tt.mutate), tt.contract)
			var mq *MalformedQuestion
			if !errors.As(err, &mq) {
				t.Fatalf("expected *MalformedQuestion, got %v", err)
			}
			if mq.Rule != tt.rule {
				t.Errorf("rule = %q, want %q (%s)", mq.Rule, tt.rule, mq.Reason)
			}
		})
	}
}

func TestValidate_MultipleChoiceKeys(t *testing.T) {
	c, err := Validate(candidateObject(func(m map[string]any) {
		m["isMultipleChoice"] = true
		m["answer_keys"] = []any{" A", "C "}
	}), DefaultContract())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(c.AnswerKeys, []string{"A", "C"}) {
		t.Errorf("keys not normalized: %v", c.AnswerKeys)
	}
}

func TestStripOptionPrefix(t *testing.T) {
	tests := map[string]string{
		"A) for":        "for",
		"B. while":      "while",
		"(C) loop":      "loop",
		"D: repeat":     "repeat",
		"plain":         "plain",
		"A.I. systems":  "A.I. systems",
		"  E)  spaced ": "spaced",
	}
	for in, want := range tests {
		if got := StripOptionPrefix(in); got != want {
			t.Errorf("StripOptionPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEndToEndRawText(t *testing.T) {
	raw := "Here you go:\n```json\n{\"question\":\"Q\",\"options\":[\"A) x\",\"B) y\"],\"answer_keys\":[\"A\"],\"isMultipleChoice\":false,\"explanation\":\"e\"}\n```"

	obj, err := ExtractJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c, err := Validate(obj, DefaultContract())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := MapToQuestion(c, "Loops", quiz.DifficultyEasy, NewCounter(7))

	if q.Text != "Q" {
		t.Errorf("question = %q", q.Text)
	}
	if !slices.Equal(q.Options, []string{"x", "y"}) {
		t.Errorf("options = %v", q.Options)
	}
	if q.CorrectAnswer.IsSet() || q.CorrectAnswer.String() != "x" {
		t.Errorf("correct answer = %v (set=%v)", q.CorrectAnswer, q.CorrectAnswer.IsSet())
	}
	if q.IsMultipleChoice {
		t.Error("expected single choice")
	}
	if q.Explanation != "e" || q.Topic != "Loops" || q.ID != 7 {
		t.Errorf("unexpected question: %+v", q)
	}
}

func TestMapToQuestion_MultipleChoice(t *testing.T) {
	c := &Candidate{
		Question:         "Which are creational patterns?",
		Options:          []string{"A) Builder", "B) Adapter", "C) Singleton"},
		AnswerKeys:       []string{"A", "C"},
		IsMultipleChoice: true,
	}
	q := MapToQuestion(c, "Creational Patterns", quiz.DifficultyMedium, NewCounter(1))
	if !q.CorrectAnswer.IsSet() {
		t.Fatal("expected a set answer")
	}
	if !q.CorrectAnswer.Matches([]string{"Singleton", "Builder"}) {
		t.Errorf("answer = %v", q.CorrectAnswer.Values())
	}

	// A multiple-choice flag with a single key keeps the set form.
	c.AnswerKeys = []string{"B"}
	q = MapToQuestion(c, "Creational Patterns", quiz.DifficultyMedium, NewCounter(1))
	if !q.CorrectAnswer.IsSet() || !slices.Equal(q.CorrectAnswer.Values(), []string{"Adapter"}) {
		t.Errorf("answer = %v set=%v", q.CorrectAnswer.Values(), q.CorrectAnswer.IsSet())
	}
}

func TestCounter(t *testing.T) {
	c := NewCounter(1)
	for want := 1; want <= 3; want++ {
		if got := c.NextID(); got != want {
			t.Errorf("NextID = %d, want %d", got, want)
		}
	}
	var zero Counter
	if got := zero.NextID(); got != 0 {
		t.Errorf("zero Counter starts at %d", got)
	}
}

func TestCandidateSchema(t *testing.T) {
	s := CandidateSchema()
	props, ok := s.Definition["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", s.Definition)
	}
	for _, name := range []string{"question", "options", "answer_keys", "isMultipleChoice", "explanation"} {
		if _, ok := props[name]; !ok {
			t.Errorf("schema missing property %q", name)
		}
	}
	if s.Definition["additionalProperties"] != false {
		t.Errorf("additionalProperties = %v", s.Definition["additionalProperties"])
	}
}
