package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/screens/history"
	"github.com/abhisek/quizdeck/internal/screens/notice"
	"github.com/abhisek/quizdeck/internal/screens/setup"
	"github.com/abhisek/quizdeck/internal/screens/welcome"
	"github.com/abhisek/quizdeck/internal/session"
	"github.com/abhisek/quizdeck/internal/store"
	"github.com/abhisek/quizdeck/internal/ui/components"
	"github.com/abhisek/quizdeck/internal/ui/layout"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

type lastRunMsg struct {
	Item *store.HistoryItem
	Err  error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	svc     *screen.Services
	menu    components.Menu
	lastRun *store.HistoryItem
	weak    []string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(svc *screen.Services) *HomeScreen {
	h := &HomeScreen{svc: svc}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	svc := h.svc
	push := func(s screen.Screen) tea.Cmd {
		return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
	}

	return []components.MenuItem{
		{Label: "Practice", Action: func() tea.Cmd {
			if svc.Generator == nil {
				return push(notice.New("Practice", "No LLM provider is configured.\n\n"+
					"Set llm.provider and an API key in config.yaml, or export one of "+
					"ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY, OPENROUTER_API_KEY."))
			}
			return push(setup.New(svc, quiz.ModePractice, nil))
		}},
		{Label: "Remedial (last run)", Disabled: len(h.weak) == 0 || svc.Generator == nil, Reason: h.remedialReason(), Action: func() tea.Cmd {
			return push(setup.New(svc, quiz.ModeRemedial, h.weak))
		}},
		{Label: "Assessment", Disabled: len(svc.BankPaths) == 0, Reason: "no question bank loaded", Action: func() tea.Cmd {
			return push(setup.New(svc, quiz.ModeAssessment, nil))
		}},
		{Label: "History", Disabled: svc.History == nil, Reason: "history store unavailable", Action: func() tea.Cmd {
			return push(history.New(svc))
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
}

func (h *HomeScreen) remedialReason() string {
	switch {
	case h.svc.Generator == nil:
		return "needs an LLM provider"
	case h.lastRun == nil:
		return "no runs yet"
	default:
		return "no weak topics"
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	repo := h.svc.History
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		items, err := repo.List(context.Background())
		if err != nil || len(items) == 0 {
			return lastRunMsg{Err: err}
		}
		return lastRunMsg{Item: &items[0]}
	}
}

// Resume reloads the last run so remedial mode reflects new history.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.Init()
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case lastRunMsg:
		h.lastRun = msg.Item
		h.weak = nil
		if msg.Item != nil {
			h.weak = session.SummaryFromHistory(*msg.Item, h.svc.WeakThreshold).WeakTopics
		}
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems())
		h.menu.Select(selected)
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	if !layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight) {
		sections = append(sections, welcome.RenderBanner(width), "")
	}

	sections = append(sections, h.renderStatus())
	sections = append(sections, "", h.menu.View())

	if len(h.weak) > 0 {
		sections = append(sections, theme.Hint.Render("Weak in last run: "+strings.Join(h.weak, ", ")))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *HomeScreen) renderStatus() string {
	var parts []string
	if h.svc.ProviderName != "" {
		parts = append(parts, "model: "+h.svc.ProviderName)
	} else {
		parts = append(parts, "model: none")
	}
	parts = append(parts, fmt.Sprintf("banks: %d", len(h.svc.BankPaths)))
	if h.lastRun != nil {
		correct, total := h.lastRun.Score()
		parts = append(parts, fmt.Sprintf("last run: %d/%d", correct, total))
	}
	return theme.Subtitle.Render(strings.Join(parts, "   "))
}

func (h *HomeScreen) Title() string {
	return "Home"
}
