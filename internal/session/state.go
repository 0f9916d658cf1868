package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizdeck/internal/quiz"
)

// Phase is the lifecycle phase of a run.
type Phase int

const (
	PhaseIdle      Phase = iota // No run, or reset
	PhaseAnswering              // Waiting for an answer to the current question
	PhaseFeedback               // Current question answered, feedback shown
	PhaseComplete               // All questions answered
)

var (
	// ErrNoActiveQuestion is returned when submitting outside PhaseAnswering.
	ErrNoActiveQuestion = errors.New("no question is waiting for an answer")

	// ErrEmptyAnswer is returned when submitting no options.
	ErrEmptyAnswer = errors.New("select at least one option")
)

// State is the state of one quiz run. It is owned by whoever drives the
// run (a TUI screen, a CLI loop, an API handler) and is not safe for
// concurrent use.
type State struct {
	// ID identifies the run. A new UUID is assigned on New.
	ID string

	Settings  quiz.Settings
	Questions []quiz.Question

	// Results holds one entry per answered question, in order.
	Results []quiz.Result

	// Index is the position of the current question.
	Index int

	Phase Phase

	StartTime         time.Time
	QuestionStartTime time.Time
	CompletedAt       time.Time
}

// New starts a run over questions. A run without questions fails with
// *quiz.InsufficientPoolError.
func New(settings quiz.Settings, questions []quiz.Question, now time.Time) (*State, error) {
	if len(questions) == 0 {
		return nil, &quiz.InsufficientPoolError{Have: 0, Need: max(settings.NumberOfQuestions, 1)}
	}
	return &State{
		ID:                uuid.NewString(),
		Settings:          settings,
		Questions:         append([]quiz.Question(nil), questions...),
		Phase:             PhaseAnswering,
		StartTime:         now,
		QuestionStartTime: now,
	}, nil
}

// Current returns the current question.
func (s *State) Current() (quiz.Question, bool) {
	if s.Phase == PhaseIdle || s.Phase == PhaseComplete || s.Index >= len(s.Questions) {
		return quiz.Question{}, false
	}
	return s.Questions[s.Index], true
}

// Submit grades the answer for the current question and moves to the
// feedback phase. Each question can be answered once.
func (s *State) Submit(answer []string, now time.Time) (quiz.Result, error) {
	if s.Phase != PhaseAnswering {
		return quiz.Result{}, ErrNoActiveQuestion
	}
	if len(answer) == 0 {
		return quiz.Result{}, ErrEmptyAnswer
	}
	res := quiz.Grade(s.Questions[s.Index], answer, now.Sub(s.QuestionStartTime))
	s.Results = append(s.Results, res)
	s.Phase = PhaseFeedback
	return res, nil
}

// Advance moves past the answered question. It returns false once the run
// is complete.
func (s *State) Advance(now time.Time) bool {
	if s.Phase != PhaseFeedback {
		return s.Phase == PhaseAnswering
	}
	s.Index++
	if s.Index >= len(s.Questions) {
		s.Phase = PhaseComplete
		s.CompletedAt = now
		return false
	}
	s.Phase = PhaseAnswering
	s.QuestionStartTime = now
	return true
}

// Done reports whether every question has been answered.
func (s *State) Done() bool { return s.Phase == PhaseComplete }

// Reset discards the run.
func (s *State) Reset() {
	*s = State{}
}

// Elapsed returns the run duration, frozen at completion.
func (s *State) Elapsed(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if !s.CompletedAt.IsZero() {
		return s.CompletedAt.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

// Score returns the number of correct answers and answered questions.
func (s *State) Score() (correct, answered int) {
	for _, r := range s.Results {
		if r.Correct {
			correct++
		}
	}
	return correct, len(s.Results)
}

// Progress returns the 1-based position of the current question and the
// total.
func (s *State) Progress() (current, total int) {
	return min(s.Index+1, len(s.Questions)), len(s.Questions)
}
