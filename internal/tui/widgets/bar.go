// ABOUTME: Horizontal bar widgets for breakdown charts
// ABOUTME: Renders proportional bars for category, severity and hotspot counts

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// EmptyColor is the unfilled part of a bar.
var EmptyColor = lipgloss.Color("#374151")

// Bar renders value as a share of total in width cells.
func Bar(value, total float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		width = 20
	}
	filled := 0
	if total > 0 {
		filled = int(value / total * float64(width))
	}
	filled = max(0, min(filled, width))

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(EmptyColor).Render(strings.Repeat("░", width-filled))
}

// PercentBar renders a 0-100 percentage with its value, e.g. a solve rate.
func PercentBar(percent float64, width int) string {
	percent = max(0, min(percent, 100))
	color := BadgeCritBg
	if percent >= 60 {
		color = BadgeOKBg
	} else if percent >= 30 {
		color = BadgeWarnBg
	}
	return fmt.Sprintf("%s %5.1f%%", Bar(percent, 100, width, color), percent)
}

// BarRow is one labelled row of a bar chart.
type BarRow struct {
	Label string
	Value int
	Color lipgloss.Color
}

// BarChart renders rows as labelled bars scaled to the largest value.
func BarChart(rows []BarRow, width int) string {
	labelWidth, peak := 0, 0
	for _, r := range rows {
		labelWidth = max(labelWidth, runewidth.StringWidth(r.Label))
		peak = max(peak, r.Value)
	}

	var b strings.Builder
	for i, r := range rows {
		color := r.Color
		if color == "" {
			color = BadgeInfoBg
		}
		label := runewidth.FillRight(r.Label, labelWidth)
		fmt.Fprintf(&b, "%s  %s %d", label, Bar(float64(r.Value), float64(peak), width, color), r.Value)
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
