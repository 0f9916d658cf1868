package session

import (
	"errors"
	"testing"
	"time"

	"github.com/abhisek/quizdeck/internal/quiz"
)

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func testQuestions() []quiz.Question {
	return []quiz.Question{
		{ID: 1, Text: "q1", Options: []string{"a", "b"}, CorrectAnswer: quiz.Single("a"), Difficulty: quiz.DifficultyEasy, Topic: "Loops"},
		{ID: 2, Text: "q2", Options: []string{"a", "b", "c"}, CorrectAnswer: quiz.Set("a", "c"), IsMultipleChoice: true, Difficulty: quiz.DifficultyHard, Topic: "Recursion"},
		{ID: 3, Text: "q3", Options: []string{"a", "b"}, CorrectAnswer: quiz.Single("b"), Difficulty: quiz.DifficultyEasy, Topic: "Loops"},
	}
}

func testSettings() quiz.Settings {
	return quiz.Settings{
		Topics:            []string{"Loops", "Recursion"},
		Difficulties:      []quiz.Difficulty{quiz.DifficultyEasy, quiz.DifficultyHard},
		NumberOfQuestions: 3,
		Mode:              quiz.ModePractice,
	}
}

func testState(t *testing.T) *State {
	t.Helper()
	s, err := New(testSettings(), testQuestions(), t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := testState(t)
	if s.ID == "" {
		t.Error("expected session id")
	}
	if s.Phase != PhaseAnswering {
		t.Errorf("Phase = %v, want PhaseAnswering", s.Phase)
	}
	q, ok := s.Current()
	if !ok || q.ID != 1 {
		t.Errorf("Current = %+v, %v", q, ok)
	}

	_, err := New(testSettings(), nil, t0)
	var ipe *quiz.InsufficientPoolError
	if !errors.As(err, &ipe) || ipe.Need != 3 {
		t.Errorf("expected InsufficientPoolError need 3, got %v", err)
	}
}

func TestSubmitAndAdvance(t *testing.T) {
	s := testState(t)

	res, err := s.Submit([]string{"a"}, t0.Add(10*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Correct || res.TimeSpent != 10*time.Second {
		t.Errorf("unexpected result: %+v", res)
	}
	if s.Phase != PhaseFeedback {
		t.Errorf("Phase = %v, want PhaseFeedback", s.Phase)
	}

	if _, err := s.Submit([]string{"a"}, t0); !errors.Is(err, ErrNoActiveQuestion) {
		t.Errorf("double submit: expected ErrNoActiveQuestion, got %v", err)
	}

	if !s.Advance(t0.Add(15 * time.Second)) {
		t.Fatal("expected more questions")
	}
	if cur, total := s.Progress(); cur != 2 || total != 3 {
		t.Errorf("Progress = %d/%d", cur, total)
	}

	if _, err := s.Submit(nil, t0); !errors.Is(err, ErrEmptyAnswer) {
		t.Errorf("expected ErrEmptyAnswer, got %v", err)
	}

	res, _ = s.Submit([]string{"c", "a"}, t0.Add(20*time.Second))
	if !res.Correct || res.TimeSpent != 5*time.Second {
		t.Errorf("multi answer: %+v", res)
	}
	s.Advance(t0.Add(21 * time.Second))

	res, _ = s.Submit([]string{"a"}, t0.Add(30*time.Second))
	if res.Correct {
		t.Error("expected incorrect answer")
	}
	if s.Advance(t0.Add(31 * time.Second)) {
		t.Error("expected run to complete")
	}
	if !s.Done() {
		t.Error("expected Done")
	}
	if _, ok := s.Current(); ok {
		t.Error("no current question after completion")
	}
	if got := s.Elapsed(t0.Add(time.Hour)); got != 31*time.Second {
		t.Errorf("Elapsed = %v, want 31s frozen at completion", got)
	}
	if c, n := s.Score(); c != 2 || n != 3 {
		t.Errorf("Score = %d/%d", c, n)
	}
}

func TestReset(t *testing.T) {
	s := testState(t)
	s.Submit([]string{"a"}, t0)
	s.Reset()

	if s.ID != "" || len(s.Questions) != 0 || len(s.Results) != 0 || s.Phase != PhaseIdle {
		t.Errorf("state not reset: %+v", s)
	}
	if _, ok := s.Current(); ok {
		t.Error("no current question after reset")
	}
	if s.Elapsed(t0) != 0 {
		t.Error("elapsed should be zero after reset")
	}
}
