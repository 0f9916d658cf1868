package topics

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/router"
	"github.com/abhisek/quizdeck/internal/screen"
	"github.com/abhisek/quizdeck/internal/ui/layout"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// ChosenMsg carries the confirmed selection back to the screen that
// opened the picker.
type ChosenMsg struct {
	Titles []string
}

// TopicsScreen is a checkbox tree over the curriculum. Toggling a topic
// follows the selection rules of curriculum.Selection; rejected toggles
// leave the selection unchanged and show the reason inline.
type TopicsScreen struct {
	tree         *curriculum.Tree
	rows         []curriculum.Node
	sel          curriculum.Selection
	cursor       int
	scrollOffset int
	message      string
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)

// New creates a picker starting from the given titles. Unknown titles
// are ignored.
func New(tree *curriculum.Tree, selected []string) *TopicsScreen {
	var known []string
	for _, t := range selected {
		if _, ok := tree.Lookup(t); ok {
			known = append(known, t)
		}
	}
	sel, _ := curriculum.NewSelection(tree, known)

	s := &TopicsScreen{tree: tree, sel: sel}
	tree.Walk(func(n curriculum.Node) {
		s.rows = append(s.rows, n)
	})
	return s
}

func (s *TopicsScreen) Init() tea.Cmd {
	return nil
}

func (s *TopicsScreen) Title() string {
	return "Topics"
}

// KeyHints returns the key binding hints for the footer.
func (s *TopicsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Space", Description: "Toggle"},
		{Key: "Tab", Description: "Next part"},
		{Key: "Enter", Description: "Done"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch kmsg.String() {
	case "up", "k":
		s.moveCursor(-1)
	case "down", "j":
		s.moveCursor(1)
	case "tab":
		s.nextPart()
	case "shift+tab":
		s.prevPart()
	case "space", " ":
		s.toggle()
	case "enter":
		return s, s.confirm()
	}
	return s, nil
}

// Selected returns the current selection.
func (s *TopicsScreen) Selected() []string {
	return s.sel.Titles()
}

func (s *TopicsScreen) toggle() {
	if len(s.rows) == 0 {
		return
	}
	title := s.rows[s.cursor].Title
	next, err := s.sel.Toggle(title, !s.sel.Contains(title))
	if err != nil {
		if errors.Is(err, curriculum.ErrEmptySelection) {
			s.message = "At least one topic must stay selected."
		} else {
			s.message = err.Error()
		}
		return
	}
	s.sel = next
	s.message = ""
}

func (s *TopicsScreen) confirm() tea.Cmd {
	if s.sel.Len() == 0 {
		s.message = "Select at least one topic."
		return nil
	}
	titles := s.sel.Titles()
	return tea.Sequence(
		func() tea.Msg { return router.PopScreenMsg{} },
		func() tea.Msg { return ChosenMsg{Titles: titles} },
	)
}

func (s *TopicsScreen) moveCursor(delta int) {
	next := s.cursor + delta
	if next >= 0 && next < len(s.rows) {
		s.cursor = next
	}
}

// nextPart jumps the cursor to the next part.
func (s *TopicsScreen) nextPart() {
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].Depth == 0 {
			s.cursor = i
			return
		}
	}
}

// prevPart jumps the cursor to the start of the current part, or to the
// previous part when already there.
func (s *TopicsScreen) prevPart() {
	for i := s.cursor - 1; i >= 0; i-- {
		if s.rows[i].Depth == 0 {
			s.cursor = i
			return
		}
	}
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *TopicsScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *TopicsScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return ""
	}

	status := theme.Hint.Render(fmt.Sprintf("  %d selected, %d leaf topics", s.sel.Len(), len(s.sel.Leaves())))
	if s.message != "" {
		status = "  " + theme.Warning.Render(s.message)
	}

	listHeight := height - 2
	s.adjustScroll(listHeight)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && len(lines) < listHeight; i++ {
		lines = append(lines, s.renderRow(s.rows[i], i == s.cursor, width))
	}

	return strings.Join(lines, "\n") + "\n\n" + status
}

func (s *TopicsScreen) renderRow(n curriculum.Node, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	box := "[ ]"
	if s.sel.Contains(n.Title) {
		box = "[x]"
	}

	indent := strings.Repeat("  ", n.Depth)
	name := n.Title
	nameWidth := width - len(indent) - 10
	if nameWidth > 1 && len(name) > nameWidth {
		name = name[:nameWidth-1] + "…"
	}

	style := lipgloss.NewStyle().Foreground(theme.Text)
	switch {
	case selected:
		style = theme.Selected
	case n.Depth == 0:
		style = theme.Heading
	case !n.Leaf:
		style = lipgloss.NewStyle().Foreground(theme.TextDim)
	}

	return fmt.Sprintf("  %s%s%s %s", cursor, indent, box, style.Render(name))
}
