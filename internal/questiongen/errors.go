package questiongen

import "fmt"

// MalformedResponse means the raw model text could not be reduced to a
// JSON object. Step names the pipeline stage that gave up.
type MalformedResponse struct {
	Step    string
	Reason  string
	Snippet string
}

func (e *MalformedResponse) Error() string {
	return fmt.Sprintf("malformed response (%s): %s: %q", e.Step, e.Reason, e.Snippet)
}

// MalformedQuestion means the extracted object violates the question
// contract. Rule names the violated check.
type MalformedQuestion struct {
	Rule   string
	Reason string
}

func (e *MalformedQuestion) Error() string {
	return fmt.Sprintf("malformed question (%s): %s", e.Rule, e.Reason)
}

// Contract rule names reported by MalformedQuestion.
const (
	RuleShape           = "shape"
	RuleQuestionText    = "question-text"
	RuleOptionsCount    = "options-count"
	RuleAnswerKeys      = "answer-keys-present"
	RuleAnswerKeyFormat = "answer-key-format"
	RuleAnswerKeyRange  = "answer-key-range"
	RuleSingleAnswer    = "single-answer"
	RuleAnswerCollision = "answer-key-collision"
)
