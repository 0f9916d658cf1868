package notice

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// NoticeScreen shows a message, typically why a feature is unavailable.
// Any key goes back.
type NoticeScreen struct {
	title   string
	message string
	isError bool
}

var _ screen.Screen = (*NoticeScreen)(nil)

// New creates an informational notice.
func New(title, message string) *NoticeScreen {
	return &NoticeScreen{title: title, message: message}
}

// Error creates a notice styled as an error.
func Error(title string, err error) *NoticeScreen {
	return &NoticeScreen{title: title, message: err.Error(), isError: true}
}

func (n *NoticeScreen) Init() tea.Cmd {
	return nil
}

func (n *NoticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		return n, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return n, nil
}

func (n *NoticeScreen) View(width, height int) string {
	color := theme.Text
	if n.isError {
		color = theme.Error
	}
	body := lipgloss.NewStyle().
		Foreground(color).
		Width(min(width-8, 70)).
		Render(n.message)
	hint := theme.Hint.Render("press any key to go back")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, body, "", hint))
}

func (n *NoticeScreen) Title() string {
	return n.title
}
