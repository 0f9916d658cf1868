package components

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// Button is a single focusable action rendered at the bottom of a form.
type Button struct {
	Label   string
	Focused bool
}

func NewButton(label string, focused bool) Button {
	return Button{Label: label, Focused: focused}
}

// Pressed reports whether msg activates a focused button.
func (b Button) Pressed(msg tea.Msg) bool {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || !b.Focused {
		return false
	}
	switch kmsg.String() {
	case "enter", "space":
		return true
	}
	return false
}

func (b Button) View() string {
	if b.Focused {
		return theme.ButtonActive.Render(" ▸ " + b.Label + " ")
	}
	return theme.ButtonInactive.Render("   " + b.Label + " ")
}
