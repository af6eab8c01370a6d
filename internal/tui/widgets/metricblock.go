// ABOUTME: Metric tiles for the dashboard overview
// ABOUTME: Icon, label, value and note in a bordered tile colored by status level

package widgets

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/safepulse-cli/internal/tui/icons"
)

// TileWidth is the outer width of a metric tile.
const TileWidth = 22

// Metric is one dashboard figure.
type Metric struct {
	Icon  icons.Icon
	Label string
	Value string
	Note  string
	Level StatusLevel
}

// Count builds a Metric from an integer value.
func Count(icon icons.Icon, label string, n int, note string, level StatusLevel) Metric {
	return Metric{Icon: icon, Label: label, Value: strconv.Itoa(n), Note: note, Level: level}
}

// Tile renders m. The border takes the level color so figures that need
// attention stand out.
func Tile(m Metric) string {
	inner := TileWidth - 4
	label := lipgloss.NewStyle().Foreground(BadgeInfoBg).Render(m.Icon.String() + " " + m.Label)
	value := lipgloss.NewStyle().Bold(true).Render(m.Value)
	note := lipgloss.NewStyle().Foreground(BadgeNeutralBg).Render(truncate(m.Note, inner))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(levelColor(m.Level)).
		Padding(0, 1).
		Width(TileWidth - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, label, value, note))
}

// Tiles lays metrics out side by side.
func Tiles(metrics ...Metric) string {
	tiles := make([]string, len(metrics))
	for i, m := range metrics {
		tiles[i] = Tile(m)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
}

// truncate shortens s to maxLen runes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(0, maxLen)])
	}
	return string(r[:maxLen-3]) + "..."
}
