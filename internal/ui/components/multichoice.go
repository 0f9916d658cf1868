package components

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// MultiChoice is an option selector. In single mode Enter picks the
// option under the cursor; in multi mode Space toggles options and Enter
// submits the checked set.
type MultiChoice struct {
	Question string
	Options  []string
	Multi    bool

	Cursor    int
	Checked   map[int]bool
	Submitted bool

	// Correct marks the options revealed as correct after submission.
	Correct []string
}

// NewMultiChoice creates a new option selector.
func NewMultiChoice(question string, options []string, multi bool) MultiChoice {
	return MultiChoice{
		Question: question,
		Options:  options,
		Multi:    multi,
		Checked:  make(map[int]bool),
	}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection. Number keys jump to
// an option; in single mode they also pick it.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Submitted {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	case "space", " ":
		if m.Multi {
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		}
	case "enter":
		if !m.Multi {
			m.Checked = map[int]bool{m.Cursor: true}
		}
		if len(m.Answer()) > 0 {
			m.Submitted = true
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			i := int(key[0] - '1')
			if i < len(m.Options) {
				m.Cursor = i
				if m.Multi {
					m.Checked[i] = !m.Checked[i]
				} else {
					m.Checked = map[int]bool{i: true}
					m.Submitted = true
				}
			}
		}
	}

	return m, nil
}

// Answer returns the checked options in display order.
func (m MultiChoice) Answer() []string {
	var out []string
	for i, opt := range m.Options {
		if m.Checked[i] {
			out = append(out, opt)
		}
	}
	return out
}

// Reveal marks the correct options for rendering after submission.
func (m *MultiChoice) Reveal(correct []string) {
	m.Submitted = true
	m.Correct = correct
}

// View renders the question and its options.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Submitted {
			prefix = "▸ "
		}
		mark := ""
		if m.Multi {
			mark = "[ ] "
			if m.Checked[i] {
				mark = "[x] "
			}
		}
		line := fmt.Sprintf("%s%d) %s%s", prefix, i+1, mark, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Submitted && slices.Contains(m.Correct, opt):
			style = theme.Correct
		case m.Submitted && m.Checked[i]:
			style = theme.Incorrect
		case m.Submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}
