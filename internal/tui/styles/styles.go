// ABOUTME: Shared lipgloss styles for consistent terminal output
// ABOUTME: SafePulse palette plus heading and field helpers for detail views

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/safepulse-cli/internal/tui/icons"
)

// Palette
var (
	Accent = lipgloss.Color("#3B82F6")
	Green  = lipgloss.Color("#16A34A")
	Orange = lipgloss.Color("#F97316")
	Red    = lipgloss.Color("#DC2626")
	Muted  = lipgloss.Color("#6B7280")
)

// labelWidth aligns values in detail views.
const labelWidth = 16

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Accent).MarginBottom(1)
	Subtitle = lipgloss.NewStyle().Foreground(Muted)
	Help     = lipgloss.NewStyle().Foreground(Muted).MarginTop(1)

	StatusWarning  = lipgloss.NewStyle().Bold(true).Foreground(Orange)
	StatusCritical = lipgloss.NewStyle().Bold(true).Foreground(Red)

	Panel      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Muted).Padding(0, 1)
	Label      = lipgloss.NewStyle().Foreground(Muted).Width(labelWidth)
	ValueStyle = lipgloss.NewStyle().Bold(true)
)

// Heading renders a title line led by icon.
func Heading(icon icons.Icon, text string) string {
	return Title.Render(icon.String() + " " + text)
}

// Field renders a "label  value" line for detail views. Empty values render
// as a dash.
func Field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return Label.Render(label) + " " + ValueStyle.Render(value)
}
