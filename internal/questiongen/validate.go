package questiongen

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MaxOptions is the number of options addressable by the letters A..F.
const MaxOptions = 6

// Contract configures the question checks.
type Contract struct {
	// MinOptions is the minimum option count. Zero means 2.
	MinOptions int
}

// DefaultContract requires at least two options.
func DefaultContract() Contract { return Contract{MinOptions: 2} }

// StrictContract requires at least four options.
func StrictContract() Contract { return Contract{MinOptions: 4} }

func (c Contract) minOptions() int {
	if c.MinOptions <= 0 {
		return 2
	}
	return c.MinOptions
}

var optionPrefix = regexp.MustCompile(`^\s*\(?[A-F][).:]\s+`)

// StripOptionPrefix removes a leading "A) "-style label from an option.
func StripOptionPrefix(option string) string {
	return strings.TrimSpace(optionPrefix.ReplaceAllString(option, ""))
}

// Validate enforces the question contract on an extracted object and
// returns the decoded candidate. Violations are reported as
// *MalformedQuestion naming the first failed rule.
func Validate(obj map[string]any, contract Contract) (*Candidate, error) {
	schema, err := shapeSchema()
	if err != nil {
		return nil, fmt.Errorf("compile question schema: %w", err)
	}
	if err := schema.Validate(any(obj)); err != nil {
		return nil, &MalformedQuestion{Rule: RuleShape, Reason: err.Error()}
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, &MalformedQuestion{Rule: RuleShape, Reason: err.Error()}
	}
	var c Candidate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &MalformedQuestion{Rule: RuleShape, Reason: err.Error()}
	}

	if err := checkCandidate(&c, contract); err != nil {
		return nil, err
	}
	return &c, nil
}

func checkCandidate(c *Candidate, contract Contract) error {
	if strings.TrimSpace(c.Question) == "" {
		return &MalformedQuestion{Rule: RuleQuestionText, Reason: "question text is empty"}
	}

	n := len(c.Options)
	if need := contract.minOptions(); n < need {
		return &MalformedQuestion{Rule: RuleOptionsCount, Reason: fmt.Sprintf("got %d options, need at least %d", n, need)}
	}
	if n > MaxOptions {
		return &MalformedQuestion{Rule: RuleOptionsCount, Reason: fmt.Sprintf("got %d options, at most %d are supported", n, MaxOptions)}
	}

	if len(c.AnswerKeys) == 0 {
		return &MalformedQuestion{Rule: RuleAnswerKeys, Reason: "no answer keys"}
	}
	for i, k := range c.AnswerKeys {
		key := strings.TrimSpace(k)
		if len(key) != 1 || key[0] < 'A' || key[0] > 'F' {
			return &MalformedQuestion{Rule: RuleAnswerKeyFormat, Reason: fmt.Sprintf("answer key %q is not a letter A-F", k)}
		}
		if int(key[0]-'A') >= n {
			return &MalformedQuestion{Rule: RuleAnswerKeyRange, Reason: fmt.Sprintf("answer key %q is out of range for %d options", key, n)}
		}
		c.AnswerKeys[i] = key
	}

	if !c.IsMultipleChoice && len(c.AnswerKeys) != 1 {
		return &MalformedQuestion{Rule: RuleSingleAnswer, Reason: fmt.Sprintf("single-answer question has %d answer keys", len(c.AnswerKeys))}
	}

	texts := make(map[string]bool, len(c.AnswerKeys))
	for _, key := range c.AnswerKeys {
		texts[StripOptionPrefix(c.Options[key[0]-'A'])] = true
	}
	if len(texts) != len(c.AnswerKeys) {
		return &MalformedQuestion{Rule: RuleAnswerCollision, Reason: fmt.Sprintf("%d answer keys resolve to %d distinct options", len(c.AnswerKeys), len(texts))}
	}
	return nil
}
