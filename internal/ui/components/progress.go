package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/ui/theme"
)

const minBarWidth = 4

// ProgressBar draws "label ████░░░░ 42%" within Width cells.
type ProgressBar struct {
	Label       string
	Ratio       float64
	ShowPercent bool
	Width       int
}

func NewProgressBar(label string, ratio float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Ratio: ratio, ShowPercent: showPercent, Width: width}
}

// Ratio returns done/total clamped to [0, 1], or 0 for an empty total.
func Ratio(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return min(max(float64(done)/float64(total), 0), 1)
}

func (p ProgressBar) View() string {
	ratio := min(max(p.Ratio, 0), 1)

	var label, percent string
	if p.Label != "" {
		label = theme.Body.Render(p.Label) + "  "
	}
	if p.ShowPercent {
		percent = theme.Hint.Render(fmt.Sprintf(" %3d%%", int(ratio*100+0.5)))
	}

	bar := max(p.Width-lipgloss.Width(label)-lipgloss.Width(percent), minBarWidth)
	filled := int(float64(bar) * ratio)

	return label +
		theme.ProgressFilled.Render(strings.Repeat("█", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat("░", bar-filled)) +
		percent
}
