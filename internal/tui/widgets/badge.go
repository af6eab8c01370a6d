// ABOUTME: Badge widgets for severity, case status and risk levels
// ABOUTME: Provides colored inline badges and status indicators

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/safepulse-cli/internal/tui/icons"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge colors
var (
	BadgeOKBg      = lipgloss.Color("#16A34A")
	BadgeWarnBg    = lipgloss.Color("#F97316")
	BadgeCritBg    = lipgloss.Color("#DC2626")
	BadgeInfoBg    = lipgloss.Color("#3B82F6")
	BadgeNeutralBg = lipgloss.Color("#6B7280")
	BadgeFg        = lipgloss.Color("#FFFFFF")
)

// SeverityColors maps crime severity to its badge color.
var SeverityColors = map[string]lipgloss.Color{
	"low":      "#16A34A",
	"medium":   "#F97316",
	"high":     "#DC2626",
	"critical": "#7C3AED",
}

// CaseStatusColors maps case status to its badge color.
var CaseStatusColors = map[string]lipgloss.Color{
	"reported":            "#3B82F6",
	"under_investigation": "#F97316",
	"solved":              "#16A34A",
	"closed":              "#6B7280",
	"cold_case":           "#7C3AED",
}

func levelColor(level StatusLevel) lipgloss.Color {
	switch level {
	case StatusOK:
		return BadgeOKBg
	case StatusWarning:
		return BadgeWarnBg
	case StatusCritical:
		return BadgeCritBg
	case StatusInfo:
		return BadgeInfoBg
	default:
		return BadgeNeutralBg
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	return colorBadge(text, levelColor(level))
}

func colorBadge(text string, bg lipgloss.Color) string {
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(BadgeFg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// normalize turns both codes ("under_investigation") and display labels
// ("Under Investigation") into the code form.
func normalize(value string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "_")
}

// Humanize turns a code such as "cold_case" into "Cold Case".
func Humanize(value string) string {
	words := strings.Fields(strings.ReplaceAll(value, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// SeverityBadge renders a crime severity badge.
func SeverityBadge(severity string) string {
	code := normalize(severity)
	bg, ok := SeverityColors[code]
	if !ok {
		bg = BadgeNeutralBg
	}
	return colorBadge(strings.ToUpper(code), bg)
}

// CaseStatusBadge renders a case status badge.
func CaseStatusBadge(status string) string {
	code := normalize(status)
	bg, ok := CaseStatusColors[code]
	if !ok {
		bg = BadgeNeutralBg
	}
	return colorBadge(Humanize(code), bg)
}

// RiskBadge renders a hotspot risk level badge.
func RiskBadge(risk string) string {
	switch normalize(risk) {
	case "low":
		return Badge("Low", StatusOK)
	case "medium":
		return Badge("Medium", StatusWarning)
	case "high":
		return Badge("High", StatusCritical)
	case "critical":
		return colorBadge("Critical", SeverityColors["critical"])
	}
	return Badge(Humanize(risk), StatusNeutral)
}

// StatusIcon returns the appropriate icon for a status level
func StatusIcon(level StatusLevel) string {
	style := lipgloss.NewStyle().Foreground(levelColor(level))
	switch level {
	case StatusOK:
		return style.Render(icons.CheckOK.String())
	case StatusWarning:
		return style.Render(icons.Warning.String())
	case StatusCritical:
		return style.Render(icons.Critical.String())
	case StatusInfo:
		return style.Render(icons.Info.String())
	default:
		return style.Render("•")
	}
}

// StatusText returns styled status text with icon
func StatusText(text string, level StatusLevel) string {
	textStyle := lipgloss.NewStyle().Foreground(levelColor(level))
	return fmt.Sprintf("%s %s", StatusIcon(level), textStyle.Render(text))
}

// TrendIndicator returns an arrow icon for trend direction. Rising crime is
// shown as a warning.
func TrendIndicator(current, previous float64) string {
	if current > previous {
		return lipgloss.NewStyle().Foreground(BadgeWarnBg).Render(icons.TrendUp.String())
	} else if current < previous {
		return lipgloss.NewStyle().Foreground(BadgeOKBg).Render(icons.TrendDown.String())
	}
	return lipgloss.NewStyle().Foreground(BadgeNeutralBg).Render("→")
}
