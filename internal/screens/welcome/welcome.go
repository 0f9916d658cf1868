package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond

	// ticksPerCard is how long each card takes to be dealt.
	ticksPerCard = 3
	// settleTicks is the pause after the last card before the hint shows.
	settleTicks = 7
)

const tagline = "Practice any topic, one question at a time."

// deck holds the card stack after each deal.
var deck = []string{
	"╭──────╮\n│  ?   │\n│      │\n╰──────╯",
	"╭──────╮╮\n│  ?   ││\n│      ││\n╰──────╯╯",
	"╭──────╮╮╮\n│  ?   │││\n│      │││\n╰──────╯╯╯",
}

var lastTick = len(deck)*ticksPerCard + settleTicks

type tickMsg time.Time

// WelcomeScreen deals a small deck of cards, then waits for a key and
// replaces itself with the screen built by next.
type WelcomeScreen struct {
	next  func() screen.Screen
	ticks int
	done  bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// dealt is the number of cards on the table.
func (w *WelcomeScreen) dealt() int {
	return min(w.ticks/ticksPerCard+1, len(deck))
}

func (w *WelcomeScreen) settled() bool { return w.ticks >= lastTick }

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.done || w.settled() {
			return w, nil
		}
		w.ticks++
		return w, tick()
	case tea.KeyPressMsg:
		if w.done {
			return w, nil
		}
		w.done = true
		home := w.next()
		return w, func() tea.Msg { return router.ReplaceScreenMsg{Screen: home} }
	}
	return w, nil
}

func (w *WelcomeScreen) View(width, height int) string {
	lines := []string{lipgloss.NewStyle().Foreground(theme.Secondary).Render(deck[w.dealt()-1])}

	if w.dealt() == len(deck) {
		lines = append(lines, "", RenderBanner(width), "", theme.Body.Bold(true).Render(tagline))
	}
	if w.settled() {
		lines = append(lines, "", theme.Hint.Render("press any key to continue"))
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}
