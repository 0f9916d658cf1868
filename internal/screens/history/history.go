package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/session"
	"github.com/abhisek/quizdeck/internal/store"
	"github.com/abhisek/quizdeck/internal/ui/layout"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

type historyLoadedMsg struct {
	Items []store.HistoryItem
	Err   error
}

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmClear
)

// HistoryScreen lists past runs, most recent first.
type HistoryScreen struct {
	svc      *screen.Services
	items    []store.HistoryItem
	selected int
	expanded map[string]bool
	confirm  confirmKind
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.BackInterceptor = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(svc *screen.Services) *HistoryScreen {
	return &HistoryScreen{
		svc:      svc,
		expanded: make(map[string]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	repo := s.svc.History
	return func() tea.Msg {
		items, err := repo.List(context.Background())
		return historyLoadedMsg{Items: items, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

// InterceptBack lets Esc dismiss a pending confirmation.
func (s *HistoryScreen) InterceptBack() bool {
	return s.confirm != confirmNone
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.confirm != confirmNone {
		return []layout.KeyHint{
			{Key: "Y", Description: "Confirm"},
			{Key: "N", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "D", Description: "Delete"},
		{Key: "C", Description: "Clear all"},
	}
	if s.svc.Generator != nil && s.svc.Setup != nil {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Redo weak topics"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.items = msg.Items
			s.errMsg = ""
		}
		s.selected = min(s.selected, max(len(s.items)-1, 0))
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		if s.confirm != confirmNone {
			return s.handleConfirm(msg.String())
		}
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.items)-1 {
				s.selected++
			}
		case "enter":
			if item, ok := s.current(); ok {
				s.expanded[item.ID] = !s.expanded[item.ID]
			}
		case "d", "D":
			if _, ok := s.current(); ok {
				s.confirm = confirmDelete
			}
		case "c", "C":
			if len(s.items) > 0 {
				s.confirm = confirmClear
			}
		case "r", "R":
			return s, s.remediate()
		}
	}
	return s, nil
}

func (s *HistoryScreen) current() (store.HistoryItem, bool) {
	if s.selected < 0 || s.selected >= len(s.items) {
		return store.HistoryItem{}, false
	}
	return s.items[s.selected], true
}

func (s *HistoryScreen) handleConfirm(key string) (screen.Screen, tea.Cmd) {
	kind := s.confirm
	switch key {
	case "y", "Y":
		s.confirm = confirmNone
	case "n", "N", "esc":
		s.confirm = confirmNone
		return s, nil
	default:
		return s, nil
	}

	repo := s.svc.History
	if kind == confirmClear {
		return s, func() tea.Msg {
			if err := repo.Clear(context.Background()); err != nil {
				return historyLoadedMsg{Err: err}
			}
			return historyLoadedMsg{}
		}
	}

	item, ok := s.current()
	if !ok {
		return s, nil
	}
	delete(s.expanded, item.ID)
	return s, func() tea.Msg {
		if err := repo.Delete(context.Background(), item.ID); err != nil {
			return historyLoadedMsg{Err: err}
		}
		items, err := repo.List(context.Background())
		return historyLoadedMsg{Items: items, Err: err}
	}
}

// remediate starts a remedial run over the weak topics of the selected run.
func (s *HistoryScreen) remediate() tea.Cmd {
	item, ok := s.current()
	if !ok || s.svc.Generator == nil || s.svc.Setup == nil {
		return nil
	}
	weak := session.SummaryFromHistory(item, s.svc.WeakThreshold).WeakTopics
	if len(weak) == 0 {
		s.errMsg = "No weak topics in this run."
		return nil
	}
	next := s.svc.Setup(quiz.ModeRemedial, weak)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n  Loading history...")
	}
	if s.confirm != confirmNone {
		return s.renderConfirm(width)
	}
	if len(s.items) == 0 {
		msg := "\n\n  No runs yet. Finish a quiz to see it here."
		if s.errMsg != "" {
			return layout.Centered(width, theme.Incorrect, "\n\nError: "+s.errMsg)
		}
		return layout.Centered(width, theme.Hint, msg)
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, item := range s.items {
		correct, total := item.Score()
		var accuracy float64
		if total > 0 {
			accuracy = float64(correct) / float64(total) * 100
		}
		secs := int(item.TotalTime.Seconds())

		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s  %-11s  %d:%02d  %d/%d  %.0f%%",
			prefix, item.CompletedAt.Local().Format("Jan 02 15:04"),
			item.Settings.Mode.DisplayName(), secs/60, secs%60, correct, total, accuracy)

		style := theme.Unselected
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[item.ID] {
			b.WriteString(s.renderDetails(item, width))
		}
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Warning, s.errMsg))
	}
	return b.String()
}

func (s *HistoryScreen) renderDetails(item store.HistoryItem, width int) string {
	sum := session.SummaryFromHistory(item, s.svc.WeakThreshold)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for _, t := range sum.Topics {
		label := t.Label
		if label == "" {
			label = "(no topic)"
		}
		line := fmt.Sprintf("    %-28s %d/%d", label, t.Correct, t.Attempted)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render(line)))
		b.WriteString("\n")
	}
	if len(sum.WeakTopics) > 0 {
		line := "    weak: " + strings.Join(sum.WeakTopics, ", ")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Warning.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderConfirm(width int) string {
	question := "Delete the selected run?"
	if s.confirm == confirmClear {
		question = fmt.Sprintf("Clear all %d runs from history?", len(s.items))
	}
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), question))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "This cannot be undone."))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error), "[Y] Yes"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No"))
	return b.String()
}
