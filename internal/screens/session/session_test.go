package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/screens/summary"
)

// scriptedGenerator returns one scripted outcome per call.
type scriptedGenerator struct {
	errs  []error
	calls int
}

func (g *scriptedGenerator) Generate(_ context.Context, req questiongen.Request) (*quiz.Question, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	q := question(req.Topic, "4")
	q.ID = i + 1
	q.Difficulty = req.Difficulty
	return &q, nil
}

func question(topic, correct string) quiz.Question {
	return quiz.Question{
		Text:          "What is 2 + 2 in " + topic + "?",
		Options:       []string{"4", "5", "6", "7"},
		CorrectAnswer: quiz.Single(correct),
		Difficulty:    quiz.DifficultyMedium,
		Topic:         topic,
	}
}

func settings(n int) quiz.Settings {
	return quiz.Settings{
		Topics:            []string{"Loops"},
		Difficulties:      []quiz.Difficulty{quiz.DifficultyMedium},
		NumberOfQuestions: n,
		Mode:              quiz.ModePractice,
	}
}

func key(code rune) tea.KeyPressMsg {
	if code >= '0' && code <= 'z' {
		return tea.KeyPressMsg{Code: code, Text: string(code)}
	}
	return tea.KeyPressMsg{Code: code}
}

func fixedClock() func() time.Time {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(5 * time.Second)
		return now
	}
}

func newBankRun(questions ...quiz.Question) *SessionScreen {
	s := NewWithQuestions(&screen.Services{WeakThreshold: 0.6}, settings(len(questions)), questions)
	s.now = fixedClock()
	return s
}

// drive feeds generation results back into the screen until answering starts.
func drive(t *testing.T, s *SessionScreen) {
	t.Helper()
	cmd := s.Init()
	for range 20 {
		if cmd == nil || s.phase != phaseGenerating {
			return
		}
		msg := cmd()
		if _, ok := msg.(questionReadyMsg); !ok {
			return
		}
		_, cmd = s.Update(msg)
	}
	t.Fatal("generation did not settle")
}

func TestSession_AnswerAndFinish(t *testing.T) {
	s := newBankRun(question("Loops", "4"), question("Recursion", "4"))
	if s.phase != phaseAnswering {
		t.Fatalf("expected answering phase, got %v", s.phase)
	}

	s.Update(key('1'))
	if s.phase != phaseFeedback || !s.lastResult.Correct {
		t.Fatalf("expected correct feedback, got phase %v result %+v", s.phase, s.lastResult)
	}
	if !strings.Contains(s.View(100, 30), "Correct") {
		t.Error("feedback view should announce a correct answer")
	}

	s.Update(key(tea.KeyEnter))
	if s.phase != phaseAnswering {
		t.Fatalf("expected next question, got phase %v", s.phase)
	}

	s.Update(key('2'))
	if s.lastResult.Correct {
		t.Error("option 2 should be wrong")
	}

	_, cmd := s.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected finish command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected summary screen, got %T", msg.Screen)
	}
	if correct, total := s.state.Score(); correct != 1 || total != 2 {
		t.Errorf("Score = %d/%d, want 1/2", correct, total)
	}
}

func TestSession_MultiSelect(t *testing.T) {
	q := question("Loops", "")
	q.CorrectAnswer = quiz.Set("4", "6")
	q.IsMultipleChoice = true
	s := newBankRun(q)

	s.Update(key('1'))
	s.Update(key('3'))
	if s.phase != phaseAnswering {
		t.Fatal("number keys should only toggle in multi-select")
	}
	s.Update(key(tea.KeyEnter))
	if s.phase != phaseFeedback || !s.lastResult.Correct {
		t.Fatalf("expected correct multi-select answer, got %+v", s.lastResult)
	}
}

func TestSession_GeneratedRun(t *testing.T) {
	gen := &scriptedGenerator{}
	slots := []questiongen.Slot{
		{Topic: "Loops", Difficulty: quiz.DifficultyEasy},
		{Topic: "Loops", Difficulty: quiz.DifficultyMedium},
		{Topic: "Loops", Difficulty: quiz.DifficultyHard},
	}
	s := NewGenerated(&screen.Services{}, settings(3), questiongen.NewBatch(gen, slots, questiongen.BatchOptions{}))
	if s.phase != phaseGenerating {
		t.Fatal("expected generating phase")
	}

	drive(t, s)

	if gen.calls != 3 {
		t.Errorf("expected 3 generator calls, got %d", gen.calls)
	}
	if s.phase != phaseAnswering || len(s.state.Questions) != 3 {
		t.Fatalf("expected 3 questions to answer, got phase %v", s.phase)
	}
	if s.warning != "" {
		t.Errorf("unexpected warning %q", s.warning)
	}
}

func TestSession_GeneratedRunSkipsMalformed(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{nil, &questiongen.MalformedResponse{Step: "json", Reason: "bad"}}}
	slots := []questiongen.Slot{{Topic: "Loops"}, {Topic: "Loops"}, {Topic: "Loops"}}
	s := NewGenerated(&screen.Services{}, settings(3), questiongen.NewBatch(gen, slots, questiongen.BatchOptions{}))

	drive(t, s)

	if len(s.state.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(s.state.Questions))
	}
	if !strings.Contains(s.warning, "skipped") {
		t.Errorf("expected skip warning, got %q", s.warning)
	}
}

func TestSession_GeneratedRunStopsOnProviderError(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{nil, errors.New("rate limited")}}
	slots := []questiongen.Slot{{Topic: "Loops"}, {Topic: "Loops"}, {Topic: "Loops"}}
	s := NewGenerated(&screen.Services{}, settings(3), questiongen.NewBatch(gen, slots, questiongen.BatchOptions{}))

	drive(t, s)

	if gen.calls != 2 {
		t.Errorf("expected the batch to stop after 2 calls, got %d", gen.calls)
	}
	if len(s.state.Questions) != 1 {
		t.Fatalf("expected the partial result to be kept, got %d", len(s.state.Questions))
	}
	if !strings.Contains(s.warning, "rate limited") {
		t.Errorf("expected stop warning, got %q", s.warning)
	}
}

func TestSession_GenerationFailure(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{errors.New("connection refused")}}
	s := NewGenerated(&screen.Services{}, settings(1), questiongen.NewBatch(gen, []questiongen.Slot{{Topic: "Loops"}}, questiongen.BatchOptions{}))

	drive(t, s)

	if s.phase != phaseError {
		t.Fatalf("expected error phase, got %v", s.phase)
	}
	if s.InterceptBack() {
		t.Error("Esc should leave an errored run")
	}
	_, cmd := s.Update(key(tea.KeyEnter))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("any key should pop an errored run")
	}
}

func TestSession_QuitConfirm(t *testing.T) {
	s := newBankRun(question("Loops", "4"), question("Loops", "4"))
	if !s.InterceptBack() {
		t.Fatal("Esc should be intercepted while answering")
	}

	s.Update(key(tea.KeyEscape))
	if !s.showingQuitConfirm {
		t.Fatal("expected quit confirmation")
	}
	s.Update(key('n'))
	if s.showingQuitConfirm {
		t.Fatal("n should dismiss the confirmation")
	}

	s.Update(key(tea.KeyEscape))
	_, cmd := s.Update(key('y'))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("quitting with no answers should pop")
	}
}

func TestSession_QuitAfterAnswerShowsSummary(t *testing.T) {
	s := newBankRun(question("Loops", "4"), question("Loops", "4"), question("Loops", "4"))
	s.Update(key('1'))
	s.Update(key(tea.KeyEnter))

	s.Update(key(tea.KeyEscape))
	_, cmd := s.Update(key('y'))
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected summary screen, got %T", msg.Screen)
	}
	if len(s.state.Questions) != 1 {
		t.Errorf("expected the run to be cut to 1 answered question, got %d", len(s.state.Questions))
	}
}
