package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// MenuItem is one entry of a Menu. Disabled items are skipped by the
// cursor and render with their Reason.
type MenuItem struct {
	Label    string
	Reason   string
	Disabled bool
	Action   func() tea.Cmd
}

// Menu is a vertical list of actions. Number keys jump straight to an
// entry and run it.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu selects the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	m.Selected = m.next(-1, 1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// Select moves the cursor to i when that item is enabled.
func (m *Menu) Select(i int) bool {
	if i < 0 || i >= len(m.Items) || m.Items[i].Disabled {
		return false
	}
	m.Selected = i
	return true
}

// next finds the nearest enabled item from start in direction dir,
// wrapping around the ends. It returns -1 when nothing is enabled.
func (m Menu) next(start, dir int) int {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((start+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			return i
		}
	}
	return -1
}

func (m Menu) run() tea.Cmd {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return nil
	}
	item := m.Items[m.Selected]
	if item.Disabled || item.Action == nil {
		return nil
	}
	return item.Action()
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if i := m.next(m.Selected, -1); i >= 0 {
			m.Selected = i
		}
	case "down", "j", "tab":
		if i := m.next(m.Selected, 1); i >= 0 {
			m.Selected = i
		}
	case "enter", "space":
		return m, m.run()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if m.Select(int(key[0] - '1')) {
				return m, m.run()
			}
		}
	}
	return m, nil
}

func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		switch {
		case item.Disabled:
			line := "    " + item.Label
			if item.Reason != "" {
				line += "  (" + item.Reason + ")"
			}
			b.WriteString(theme.Disabled.Render(line))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + item.Label))
		default:
			b.WriteString(theme.Unselected.Render("    " + item.Label))
		}
		b.WriteString("\n")
	}
	return b.String()
}
