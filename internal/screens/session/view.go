package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/ui/components"
	"github.com/abhisek/quizdeck/internal/ui/layout"
	"github.com/abhisek/quizdeck/internal/ui/theme"
)

// renderGenerating shows generation progress.
func (s *SessionScreen) renderGenerating(width, height int) string {
	total := s.batch.Len()
	done := len(s.batch.Questions()) + s.batch.Skipped()

	bar := components.NewProgressBar(
		fmt.Sprintf("Generating question %d of %d", min(done+1, total), total),
		components.Ratio(done, total), true, min(width-8, 70))

	content := lipgloss.JoinVertical(lipgloss.Center,
		bar.View(),
		"",
		theme.Hint.Render(fmt.Sprintf("%d ready, %d skipped", len(s.batch.Questions()), s.batch.Skipped())),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// renderInfoLine renders the topic and score line above the question.
func (s *SessionScreen) renderInfoLine(width int) string {
	q, _ := s.state.Current()
	current, total := s.state.Progress()
	correct, _ := s.state.Score()

	elapsed := s.state.Elapsed(s.now())
	timerStr := fmt.Sprintf("%d:%02d", int(elapsed.Minutes()), int(elapsed.Seconds())%60)

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s  ·  %s", q.Topic, q.Difficulty))

	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d  %s",
			current, total,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			correct,
			timerStr,
		))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}

	return infoLine + "\n" +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0)))
}

// renderQuestionView renders the active question.
func (s *SessionScreen) renderQuestionView(width, height int) string {
	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n\n")

	if s.warning != "" {
		b.WriteString(layout.Centered(width, theme.Warning, s.warning))
		b.WriteString("\n\n")
	}

	block := lipgloss.NewStyle().Width(min(width-8, 80)).Render(s.choice.View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, block))

	hint := "Press 1-9 or use arrows + Enter"
	if s.choice.Multi {
		hint = "Select all that apply: Space toggles, Enter submits"
	}
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Hint, hint))

	return b.String()
}

// renderFeedback renders the graded question with the correct options
// highlighted and the explanation.
func (s *SessionScreen) renderFeedback(width, height int) string {
	var b strings.Builder
	b.WriteString(s.renderInfoLine(width))
	b.WriteString("\n\n")

	if s.lastResult.Correct {
		b.WriteString(layout.Centered(width, theme.Correct, "Correct!"))
	} else {
		b.WriteString(layout.Centered(width, theme.Incorrect, "Not quite"))
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
			"Correct answer: "+s.lastResult.Question.CorrectAnswer.String()))
	}
	b.WriteString("\n\n")

	block := lipgloss.NewStyle().Width(min(width-8, 80)).Render(s.choice.View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, block))
	b.WriteString("\n")

	if exp := s.lastResult.Question.Explanation; exp != "" {
		expBlock := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text).
			Render(exp)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, expBlock))
		b.WriteString("\n\n")
	}

	b.WriteString(layout.Centered(width, theme.Hint, "Press any key to continue..."))
	return b.String()
}

// renderQuitConfirm renders the quit confirmation dialog.
func (s *SessionScreen) renderQuitConfirm(width, height int) string {
	note := "Nothing has been answered yet."
	if s.state != nil && len(s.state.Results) > 0 {
		note = "Answered questions will be scored and saved."
	}

	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "End this run early?"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), note))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Success), "[Y] Yes, end run"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
