package tui

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Color palette -- single source of truth for all TUI colors.
// Values are ANSI-256 color codes passed to lipgloss.Color().
// ---------------------------------------------------------------------------

var (
	colorPrimary   = lipgloss.Color("170")
	colorSecondary = lipgloss.Color("212")
	colorSuccess   = lipgloss.Color("82")
	colorWarning   = lipgloss.Color("214")
	colorDanger    = lipgloss.Color("196")
	colorDim       = lipgloss.Color("241")
	colorSubtle    = lipgloss.Color("236")
	colorText      = lipgloss.Color("252")
	colorWhite     = lipgloss.Color("255")
	colorDangerBg  = lipgloss.Color("52")
)

// ---------------------------------------------------------------------------
// Summary colors -- one per scanner.Summary ID in the summary bar.
// ---------------------------------------------------------------------------

var summaryColors = map[string]lipgloss.Color{
	"projects":     lipgloss.Color("75"),
	"node_modules": lipgloss.Color("119"),
}

// summaryColor returns the theme color for a summary segment.
// Unknown IDs fall back to colorPrimary.
func summaryColor(id string) lipgloss.Color {
	if c, ok := summaryColors[id]; ok {
		return c
	}
	return colorPrimary
}

// ---------------------------------------------------------------------------
// Bar colors -- used for the per-project node_modules share.
// ---------------------------------------------------------------------------

var (
	barColorHigh   = lipgloss.Color("196")
	barColorMedium = lipgloss.Color("214")
	barColorLow    = lipgloss.Color("82")
)

// barColor returns a color based on a 0.0-1.0 ratio.
//   - >= 0.75 -> high (red)
//   - >= 0.40 -> medium (orange/yellow)
//   - < 0.40  -> low (green)
func barColor(ratio float64) lipgloss.Color {
	switch {
	case ratio >= 0.75:
		return barColorHigh
	case ratio >= 0.40:
		return barColorMedium
	default:
		return barColorLow
	}
}

// chartColors cycle across adjacent blocks of the node_modules chart.
var chartColors = []lipgloss.Color{
	lipgloss.Color("75"),
	lipgloss.Color("214"),
	lipgloss.Color("141"),
	lipgloss.Color("223"),
	lipgloss.Color("39"),
	lipgloss.Color("119"),
	lipgloss.Color("208"),
	lipgloss.Color("183"),
	lipgloss.Color("220"),
	lipgloss.Color("171"),
	lipgloss.Color("82"),
	lipgloss.Color("212"),
}
