package quiz

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is the difficulty label attached to every question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// AllDifficulties returns the three difficulty levels in ascending order.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty parses a difficulty label, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q: must be easy, medium or hard", s)
}

// Mode is the kind of quiz run.
type Mode string

const (
	// ModePractice generates fresh questions for user-selected topics.
	ModePractice Mode = "practice"

	// ModeRemedial generates questions for topics found weak in a prior run.
	ModeRemedial Mode = "remedial"

	// ModeAssessment samples a part-weighted set from loaded question banks.
	ModeAssessment Mode = "assessment"
)

// AllModes returns every run mode.
func AllModes() []Mode {
	return []Mode{ModePractice, ModeRemedial, ModeAssessment}
}

// ParseMode parses a mode tag.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePractice, ModeRemedial, ModeAssessment:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q: must be practice, remedial or assessment", s)
}

// Generated reports whether questions for this mode come from the LLM.
func (m Mode) Generated() bool {
	return m == ModePractice || m == ModeRemedial
}

// DisplayName returns a human-readable mode name.
func (m Mode) DisplayName() string {
	switch m {
	case ModePractice:
		return "Practice"
	case ModeRemedial:
		return "Weak Topics"
	case ModeAssessment:
		return "Assessment"
	default:
		return string(m)
	}
}

// Question is a generated or loaded quiz item.
type Question struct {
	ID               int        `json:"id"`
	Text             string     `json:"question"`
	Options          []string   `json:"options"`
	CorrectAnswer    Answer     `json:"correctAnswer"`
	IsMultipleChoice bool       `json:"isMultipleChoice"`
	Difficulty       Difficulty `json:"difficulty"`
	Explanation      string     `json:"explanation,omitempty"`
	Topic            string     `json:"topic"`
}

// Settings configures a quiz run.
type Settings struct {
	Topics            []string     `json:"topics"`
	Difficulties      []Difficulty `json:"difficulties"`
	NumberOfQuestions int          `json:"numberOfQuestions"`
	Mode              Mode         `json:"mode"`
	StyleAligned      bool         `json:"styleAligned,omitempty"`
}

// Validate runs the local pre-flight checks on the settings. It does not
// look at the curriculum; callers apply the leaf filter before validating.
func (s Settings) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return &ValidationError{Field: "mode", Message: err.Error()}
	}
	if s.NumberOfQuestions <= 0 {
		return &ValidationError{Field: "numberOfQuestions", Message: "number of questions must be greater than zero"}
	}
	if len(s.Difficulties) == 0 {
		return &ValidationError{Field: "difficulties", Message: "select at least one difficulty level"}
	}
	for _, d := range s.Difficulties {
		if _, err := ParseDifficulty(string(d)); err != nil {
			return &ValidationError{Field: "difficulties", Message: err.Error()}
		}
	}
	if s.Mode.Generated() && len(s.Topics) == 0 {
		return &ValidationError{Field: "topics", Message: "select at least one leaf topic"}
	}
	return nil
}

// Result is one answered question.
type Result struct {
	Question  Question      `json:"question"`
	Submitted []string      `json:"submitted"`
	Correct   bool          `json:"correct"`
	TimeSpent time.Duration `json:"timeSpent"`
}

// Grade builds the Result for a submitted answer set.
func Grade(q Question, submitted []string, spent time.Duration) Result {
	return Result{
		Question:  q,
		Submitted: append([]string(nil), submitted...),
		Correct:   q.CorrectAnswer.Matches(submitted),
		TimeSpent: spent,
	}
}
