package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/wiper/internal/scanner"
	"github.com/lu-zhengda/wiper/internal/utils"
)

// renderHeader draws a header bar with breadcrumb navigation.
func renderHeader(parts ...string) string {
	breadcrumb := "wiper"
	for _, p := range parts {
		breadcrumb += " > " + p
	}
	return headerBarStyle.Render(breadcrumb) + "\n"
}

// renderFooter draws a footer with keybind hints.
func renderFooter(hints string) string {
	return footerStyle.Render(hints)
}

// renderProgressBar draws a progress bar of the given width.
// ratio should be between 0.0 and 1.0.
func renderProgressBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio * float64(width))
	if filled == 0 && ratio > 0 {
		filled = 1
	}
	empty := width - filled
	fillStyle := lipgloss.NewStyle().Foreground(barColor(ratio))
	return "[" + fillStyle.Render(strings.Repeat("█", filled)) + strings.Repeat("░", empty) + "]"
}

// renderSummaryBar draws the summaries as adjacent colored segments
// proportional to their sizes, followed by a legend line.
func renderSummaryBar(sums []scanner.Summary, width int) string {
	var total int64
	for _, s := range sums {
		total += s.Size
	}

	var bar strings.Builder
	used := 0
	for i, s := range sums {
		n := 0
		if total > 0 {
			n = int(float64(s.Size) / float64(total) * float64(width))
			if n == 0 && s.Size > 0 {
				n = 1
			}
		}
		if i == len(sums)-1 && total > 0 {
			n = width - used
		}
		if n < 0 {
			n = 0
		}
		used += n
		bar.WriteString(lipgloss.NewStyle().Foreground(summaryColor(s.ID)).Render(strings.Repeat("█", n)))
	}
	if total == 0 {
		bar.WriteString(dimStyle.Render(strings.Repeat("░", width)))
	}

	legend := make([]string, 0, len(sums))
	for _, s := range sums {
		swatch := lipgloss.NewStyle().Foreground(summaryColor(s.ID)).Render("■")
		legend = append(legend, fmt.Sprintf("%s %s %s", swatch, s.Label, utils.FormatSize(s.Size)))
	}
	return bar.String() + "\n" + strings.Join(legend, "   ") + "\n"
}

func truncPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}
