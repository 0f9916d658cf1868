package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	HeaderHeight = 3
	FooterHeight = 3

	// Below this height screens drop decorative banners.
	CompactHeightThreshold = 30

	hintSeparator = "   "
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func (h KeyHint) render() string {
	return theme.KeyName.Render(h.Key) + " " + theme.Hint.UnsetItalic().Render(h.Description)
}

// Centered renders text centered in width with the given style.
func Centered(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}

func IsCompactHeight(height int) bool {
	return height < CompactHeightThreshold
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

func RenderMinSizeMessage(width, height int) string {
	text := fmt.Sprintf("Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Body.Render(text))
}

// bar wraps a single line of content in the framed header/footer style.
func bar(content string, width int) string {
	return theme.Bar.Width(width).Render(content)
}

// RenderHeader lays out the brand on the left, the screen title in the
// middle and status (usually the LLM provider) on the right.
func RenderHeader(title, status string, width int) string {
	left := theme.Brand.Render("  quizdeck")
	center := theme.Body.Render(title)
	right := theme.Hint.UnsetItalic().Render(status) + " "

	inner := max(width-4, 0)
	leftGap := max((inner-lipgloss.Width(center))/2-lipgloss.Width(left), 1)
	rightGap := max(inner-lipgloss.Width(left)-leftGap-lipgloss.Width(center)-lipgloss.Width(right), 1)

	return bar(left+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right, width)
}

// RenderFooter shows as many hints as fit in width, in order.
func RenderFooter(hints []KeyHint, width int) string {
	room := max(width-6, 0)
	var b strings.Builder
	b.WriteString("  ")
	for i, h := range hints {
		part := h.render()
		if i > 0 {
			part = hintSeparator + part
		}
		if lipgloss.Width(b.String())+lipgloss.Width(part) > room {
			break
		}
		b.WriteString(part)
	}
	return bar(b.String(), width)
}

// RenderFrame stacks header, content and footer, giving the content
// whatever height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).MaxHeight(body).Render(content),
		footer,
	)
}
