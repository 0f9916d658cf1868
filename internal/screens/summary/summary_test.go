package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/analysis"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/session"
	"github.com/abhisek/quizdeck/internal/store"
)

func testSummary() *session.Summary {
	return &session.Summary{
		SessionID:      "run-1",
		Mode:           quiz.ModePractice,
		Duration:       4 * time.Minute,
		TotalQuestions: 4,
		TotalCorrect:   2,
		Accuracy:       0.5,
		Topics: []session.Breakdown{
			{Label: "Loops", Attempted: 2, Correct: 2, Accuracy: 1},
			{Label: "Recursion", Attempted: 2, Correct: 0, Accuracy: 0},
		},
		WeakTopics: []string{"Recursion"},
	}
}

type failingAnalyzer struct{}

func (failingAnalyzer) Analyze(context.Context, *session.Summary) (*analysis.Report, error) {
	return nil, errors.New("model unavailable")
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(&screen.Services{}, testSummary(), nil)
	if s.Title() != "Run Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Run Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(&screen.Services{}, testSummary(), nil)
	view := s.View(100, 40)
	for _, want := range []string{"Run complete!", "Loops", "Recursion", "Weak topics: Recursion"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_AnalysisFallsBackToRules(t *testing.T) {
	s := New(&screen.Services{Analyzer: failingAnalyzer{}}, testSummary(), nil)
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected an init command")
	}
	// Without a history repo the only command is the analysis.
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			s.Update(c())
		}
	} else {
		s.Update(msg)
	}
	if s.report == nil || s.report.Source != analysis.SourceRules {
		t.Fatalf("expected rule-based fallback report, got %+v", s.report)
	}
	if got := s.WeakTopics(); len(got) != 1 || got[0] != "Recursion" {
		t.Errorf("WeakTopics = %v", got)
	}
}

type recordingRepo struct {
	store.HistoryRepo
	saved []store.HistoryItem
}

func (r *recordingRepo) Save(_ context.Context, item store.HistoryItem) (store.HistoryItem, error) {
	r.saved = append(r.saved, item)
	return item, nil
}

func TestSummaryScreen_SavesHistory(t *testing.T) {
	repo := &recordingRepo{}
	item := &store.HistoryItem{SessionID: "run-1", Results: []store.LeanResult{{QuestionID: 1, Correct: true}}}
	s := New(&screen.Services{History: repo}, testSummary(), item)

	msg := s.Init()()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		t.Fatalf("expected a batch, got %T", msg)
	}
	for _, c := range batch {
		s.Update(c())
	}
	if len(repo.saved) != 1 || repo.saved[0].SessionID != "run-1" {
		t.Errorf("saved = %+v", repo.saved)
	}
	if !s.saved {
		t.Error("expected saved flag")
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	s := New(&screen.Services{}, testSummary(), nil)
	for _, k := range []tea.KeyPressMsg{{Code: tea.KeyEnter}, {Code: tea.KeyEscape}} {
		if _, cmd := s.Update(k); cmd == nil {
			t.Errorf("expected a command on %s", k.String())
		}
	}
}

func TestSummaryScreen_RemedialNeedsGenerator(t *testing.T) {
	s := New(&screen.Services{}, testSummary(), nil)
	if _, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"}); cmd != nil {
		t.Error("expected no remedial run without a generator")
	}
	if len(s.KeyHints()) != 1 {
		t.Errorf("KeyHints = %v", s.KeyHints())
	}
}
