package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdeck/internal/ui/theme"
)

const bannerArt = `
  ___        _         _           _    
 / _ \ _   _(_)____ __| | ___  ___| | __
| | | | | | | |_  // _' |/ _ \/ __| |/ /
| |_| | |_| | |/ /| (_| |  __/ (__|   < 
 \__\_\\__,_|_/___|\__,_|\___|\___|_|\_\`

const bannerCompact = "Q U I Z D E C K"

// RenderBanner returns the app banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 44 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 44 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
