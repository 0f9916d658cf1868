package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/store"
)

type memoryRepo struct {
	store.HistoryRepo
	items []store.HistoryItem
}

func (m *memoryRepo) List(context.Context) ([]store.HistoryItem, error) {
	return append([]store.HistoryItem(nil), m.items...), nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	for i, it := range m.items {
		if it.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryRepo) Clear(context.Context) error {
	m.items = nil
	return nil
}

func run(id string, at time.Time, results ...store.LeanResult) store.HistoryItem {
	return store.HistoryItem{
		ID: id,
		Settings: quiz.Settings{
			Topics:            []string{"Loops", "Recursion"},
			Difficulties:      []quiz.Difficulty{quiz.DifficultyMedium},
			NumberOfQuestions: len(results),
			Mode:              quiz.ModePractice,
		},
		Results:     results,
		CompletedAt: at,
		TotalTime:   2 * time.Minute,
	}
}

func newScreen(t *testing.T) (*HistoryScreen, *memoryRepo) {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := &memoryRepo{items: []store.HistoryItem{
		run("b", now,
			store.LeanResult{QuestionID: 1, Topic: "Loops", Correct: true},
			store.LeanResult{QuestionID: 2, Topic: "Recursion", Correct: false},
			store.LeanResult{QuestionID: 3, Topic: "Recursion", Correct: false},
		),
		run("a", now.Add(-time.Hour),
			store.LeanResult{QuestionID: 1, Topic: "Loops", Correct: true},
		),
	}}
	s := New(&screen.Services{History: repo, WeakThreshold: 0.6})
	s.Update(s.Init()())
	return s, repo
}

type scriptedGenerator struct{}

func (scriptedGenerator) Generate(context.Context, questiongen.Request) (*quiz.Question, error) {
	return nil, nil
}

func key(code rune) tea.KeyPressMsg {
	if code >= 'a' && code <= 'z' {
		return tea.KeyPressMsg{Code: code, Text: string(code)}
	}
	return tea.KeyPressMsg{Code: code}
}

func TestHistoryScreen_ListsRuns(t *testing.T) {
	s, _ := newScreen(t)
	if len(s.items) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(s.items))
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "1/3") || !strings.Contains(view, "1/1") {
		t.Errorf("view missing scores:\n%s", view)
	}
}

func TestHistoryScreen_EmptyState(t *testing.T) {
	s := New(&screen.Services{History: &memoryRepo{}})
	s.Update(s.Init()())
	if !strings.Contains(s.View(80, 20), "No runs yet") {
		t.Error("expected empty state message")
	}
}

func TestHistoryScreen_ExpandShowsBreakdown(t *testing.T) {
	s, _ := newScreen(t)
	s.Update(key(tea.KeyEnter))

	view := s.View(100, 30)
	if !strings.Contains(view, "Recursion") || !strings.Contains(view, "weak: Recursion") {
		t.Errorf("expanded view missing breakdown:\n%s", view)
	}
}

func TestHistoryScreen_DeleteNeedsConfirmation(t *testing.T) {
	s, repo := newScreen(t)
	s.Update(key(tea.KeyDown))
	s.Update(key('d'))

	if !s.InterceptBack() {
		t.Fatal("expected Esc to be intercepted while confirming")
	}

	s.Update(key('n'))
	if s.InterceptBack() || len(repo.items) != 2 {
		t.Fatal("cancel should keep both runs")
	}

	s.Update(key('d'))
	_, cmd := s.Update(key('y'))
	if cmd == nil {
		t.Fatal("expected delete command")
	}
	s.Update(cmd())

	if len(repo.items) != 1 || repo.items[0].ID != "b" {
		t.Fatalf("expected only run b to remain, got %+v", repo.items)
	}
	if s.selected != 0 {
		t.Errorf("selection should clamp to 0, got %d", s.selected)
	}
}

func TestHistoryScreen_Clear(t *testing.T) {
	s, repo := newScreen(t)
	s.Update(key('c'))
	if !strings.Contains(s.View(80, 20), "Clear all 2 runs") {
		t.Error("expected clear confirmation")
	}
	_, cmd := s.Update(key('y'))
	s.Update(cmd())

	if len(repo.items) != 0 || len(s.items) != 0 {
		t.Error("expected history to be empty")
	}
}

func TestHistoryScreen_Remediate(t *testing.T) {
	s, _ := newScreen(t)

	// Without a generator nothing happens.
	if _, cmd := s.Update(key('r')); cmd != nil {
		t.Fatal("remedial run should need a generator")
	}

	var gotMode quiz.Mode
	var gotTopics []string
	s.svc.Generator = scriptedGenerator{}
	s.svc.Setup = func(mode quiz.Mode, topics []string) screen.Screen {
		gotMode, gotTopics = mode, topics
		return s
	}

	_, cmd := s.Update(key('r'))
	if cmd == nil {
		t.Fatal("expected push command")
	}
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if gotMode != quiz.ModeRemedial || len(gotTopics) != 1 || gotTopics[0] != "Recursion" {
		t.Errorf("Setup called with %v %v", gotMode, gotTopics)
	}
}
