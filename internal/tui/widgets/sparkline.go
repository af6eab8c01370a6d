// ABOUTME: Sparkline widget for crime count trends
// ABOUTME: One block per period, scaled from zero; long series are summed into buckets

package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/safepulse-cli/internal/tui/icons"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders counts (oldest first) in at most width blocks. A zero
// count is the lowest block and the peak is the highest.
func Sparkline(counts []int, width int, color lipgloss.Color) string {
	if len(counts) == 0 || width <= 0 {
		return ""
	}
	buckets := bucketCounts(counts, width)

	peak := 0
	for _, c := range buckets {
		peak = max(peak, c)
	}
	line := make([]rune, len(buckets))
	for i, c := range buckets {
		idx := 0
		if peak > 0 {
			idx = max(0, c) * (len(sparkBlocks) - 1) / peak
		}
		line[i] = sparkBlocks[idx]
	}

	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(color)
	}
	return style.Render(string(line))
}

// bucketCounts sums consecutive counts so the result has at most width
// entries. Totals are preserved.
func bucketCounts(counts []int, width int) []int {
	if len(counts) <= width {
		return counts
	}
	out := make([]int, width)
	for i := range width {
		lo, hi := i*len(counts)/width, (i+1)*len(counts)/width
		for _, c := range counts[lo:hi] {
			out[i] += c
		}
	}
	return out
}

// TrendArrow compares the last two counts.
func TrendArrow(counts []int) string {
	if len(counts) < 2 {
		return ""
	}
	prev, last := counts[len(counts)-2], counts[len(counts)-1]
	switch {
	case last > prev:
		return icons.TrendUp.String()
	case last < prev:
		return icons.TrendDown.String()
	}
	return "="
}
