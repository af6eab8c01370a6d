// ABOUTME: Shared human-readable formatting helpers for commands
// ABOUTME: Tables, officer and crime detail views, and download writing

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/session"
	"github.com/markalston/safepulse-cli/internal/tui/icons"
	"github.com/markalston/safepulse-cli/internal/tui/styles"
	"github.com/markalston/safepulse-cli/internal/tui/widgets"
)

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(styles.Accent).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Padding(0, 1)
)

// newTable returns a bordered table with the shared header style.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Muted)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeader
			}
			return tableCell
		})
}

// parseID parses a positive integer argument.
func parseID(arg, what string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number", what, arg)
	}
	return id, nil
}

// dateOnly trims a timestamp to its date.
func dateOnly(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

func formatOfficerHuman(o *session.Officer) string {
	lines := []string{
		styles.Heading(icons.Officer, o.DisplayName()),
		styles.Field("Badge", o.BadgeNumber),
		styles.Field("Role", widgets.Humanize(o.Role)),
		styles.Field("Rank", o.Rank),
		styles.Field("Station", o.Station),
		styles.Field("District", o.District),
		styles.Field("Email", o.Email),
		styles.Field("Phone", o.PhoneNumber),
	}
	if o.DateJoined != "" {
		lines = append(lines, styles.Field("Joined", dateOnly(o.DateJoined)))
	}
	return strings.Join(lines, "\n")
}

func formatOfficersHuman(page *client.Page[session.Officer]) string {
	if len(page.Results) == 0 {
		return "No officers found."
	}
	t := newTable("BADGE", "NAME", "ROLE", "RANK", "STATION", "DISTRICT")
	for _, o := range page.Results {
		t.Row(o.BadgeNumber, o.DisplayName(), widgets.Humanize(o.Role), o.Rank, o.Station, o.District)
	}
	return t.String() + "\n" + styles.Subtitle.Render(fmt.Sprintf("%d officer(s)", page.Count))
}

// formatCrimesHuman renders a page of crimes as a table with a paging footer.
func formatCrimesHuman(page *client.Page[client.Crime], pageNum int) string {
	if len(page.Results) == 0 {
		return "No crime reports found."
	}
	t := newTable("ID", "CASE", "TITLE", "CATEGORY", "SEVERITY", "STATUS", "DISTRICT", "REPORTED")
	for _, c := range page.Results {
		t.Row(
			strconv.Itoa(c.ID),
			c.CaseNumber,
			truncateText(c.Title, 40),
			widgets.Humanize(c.Category),
			widgets.SeverityBadge(c.Severity),
			widgets.CaseStatusBadge(c.Status),
			c.District,
			dateOnly(c.DateReported),
		)
	}

	if pageNum < 1 {
		pageNum = 1
	}
	footer := fmt.Sprintf("Page %d, %d of %d report(s)", pageNum, len(page.Results), page.Count)
	if page.Next != "" {
		footer += fmt.Sprintf(". More with --page %d", pageNum+1)
	}
	return t.String() + "\n" + styles.Subtitle.Render(footer)
}

func formatCrimeHuman(c *client.Crime) string {
	var b strings.Builder
	b.WriteString(styles.Heading(icons.Case, c.CaseNumber+"  "+c.Title))
	b.WriteString("\n")
	fields := []string{
		styles.Label.Render("Severity") + " " + widgets.SeverityBadge(c.Severity),
		styles.Label.Render("Status") + " " + widgets.CaseStatusBadge(c.Status),
		styles.Field("Category", widgets.Humanize(c.Category)),
		styles.Field("Location", strings.Trim(c.Location+", "+c.District, ", ")),
		styles.Field("Occurred", c.DateOccurred),
		styles.Field("Reported", c.DateReported),
		styles.Field("Reported by", c.ReportedByName),
		styles.Field("Victims", strconv.Itoa(c.VictimCount)),
		styles.Field("Weapons", c.WeaponsUsed),
		styles.Field("Modus operandi", c.ModusOperandi),
		styles.Field("Analyzed", yesNo(c.IsAnalyzed)),
	}
	b.WriteString(strings.Join(fields, "\n"))

	if c.Description != "" {
		b.WriteString("\n\n" + styles.Panel.Render(c.Description))
	}
	if c.EvidenceNotes != "" {
		b.WriteString("\n" + styles.Field("Evidence", c.EvidenceNotes))
	}

	if len(c.Suspects) > 0 {
		t := newTable("ID", "SUSPECT", "ALIAS", "AGE", "GENDER", "ARRESTED")
		for _, s := range c.Suspects {
			age := ""
			if s.AgeEstimate > 0 {
				age = strconv.Itoa(s.AgeEstimate)
			}
			t.Row(strconv.Itoa(s.ID), s.Name, s.Alias, age, widgets.Humanize(s.Gender), yesNo(s.IsArrested))
		}
		b.WriteString("\n\n" + t.String())
	}
	if len(c.Witnesses) > 0 {
		t := newTable("ID", "WITNESS", "CONTACT", "STATEMENT")
		for _, wt := range c.Witnesses {
			name := wt.Name
			if wt.IsAnonymous {
				name = "(anonymous)"
			}
			t.Row(strconv.Itoa(wt.ID), name, wt.Contact, truncateText(wt.Statement, 50))
		}
		b.WriteString("\n\n" + t.String())
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// writeDownload saves d to output, or to d.Filename in the current directory
// when output is empty. It returns the path written.
func writeDownload(d *client.Download, output string) (string, error) {
	path := output
	if path == "" {
		path = filepath.Base(d.Filename)
	}
	if err := os.WriteFile(path, d.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

// downloadResult is the JSON shape printed after saving a download.
type downloadResult struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
}

func formatDownloadHuman(r downloadResult) string {
	return widgets.StatusText(fmt.Sprintf("Saved %s (%d bytes)", r.Path, r.Bytes), widgets.StatusOK)
}
