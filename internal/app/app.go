package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/screens/home"
	"github.com/abhisek/quizdeck/internal/screens/setup"
	"github.com/abhisek/quizdeck/internal/screens/welcome"
	"github.com/abhisek/quizdeck/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	status string
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the welcome screen.
func newAppModel(svc *screen.Services) AppModel {
	if svc.Setup == nil {
		svc.Setup = func(mode quiz.Mode, topics []string) screen.Screen {
			return setup.New(svc, mode, topics)
		}
	}
	status := svc.ProviderName
	if status == "" {
		status = "offline"
	}
	return AppModel{
		router: router.New(welcome.New(func() screen.Screen { return home.New(svc) })),
		status: status,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if b, ok := m.router.Active().(screen.BackInterceptor); ok && b.InterceptBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(svc *screen.Services) error {
	p := tea.NewProgram(newAppModel(svc))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
