// ABOUTME: Crime report commands for the safepulse CLI
// ABOUTME: List, view, create, update and delete reports plus statistics

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/tui/prompt"
	"github.com/markalston/safepulse-cli/internal/tui/styles"
	"github.com/markalston/safepulse-cli/internal/tui/widgets"
)

var (
	crimeFilter client.CrimeFilter

	crimeInput    client.Crime
	crimeLat      string
	crimeLong     string
	confirmDelete bool
)

var crimesCmd = &cobra.Command{
	Use:     "crimes",
	Aliases: []string{"crime"},
	Short:   "Work with crime reports",
}

var crimesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List crime reports",
	Long: `List crime reports, newest first, 20 per page.

Filters combine: --search matches title, description and case number;
--district matches case-insensitively; --from/--to take YYYY-MM-DD dates.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCrimesList(ctx, w, crimeFilter)
		})
	},
}

var crimesGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a crime report with its suspects and witnesses",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCrimeGet(ctx, w, args[0])
		})
	},
}

var crimesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "File a new crime report",
	Long: `File a new crime report.

Title, category, description, location, district and date occurred are
required. When any is missing and a terminal is attached, an interactive form
is shown.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCrimeCreate(ctx, w, crimeFromFlags())
		})
	},
}

var crimesUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update fields of a crime report",
	Long:  `Update a crime report. Only the flags given are changed.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCrimeUpdate(ctx, w, args[0], crimeFromFlags())
		})
	},
}

var crimesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a crime report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCrimeDelete(ctx, w, args[0], confirmDelete)
		})
	},
}

var crimesMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the reports you filed",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runCrimesMine)
	},
}

var crimesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show report counts by category, severity and status",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runCrimeStats)
	},
}

func init() {
	lf := crimesListCmd.Flags()
	lf.StringVar(&crimeFilter.Search, "search", "", "Search title, description and case number")
	lf.StringVar(&crimeFilter.Category, "category", "", "Category, e.g. theft, robbery, assault")
	lf.StringVar(&crimeFilter.Severity, "severity", "", "Severity: low, medium, high, critical")
	lf.StringVar(&crimeFilter.Status, "status", "", "Status: reported, under_investigation, solved, closed, cold_case")
	lf.StringVar(&crimeFilter.District, "district", "", "District")
	lf.StringVar(&crimeFilter.Ordering, "ordering", "", "Sort field, prefix with - for descending (e.g. -date_occurred)")
	lf.StringVar(&crimeFilter.DateFrom, "from", "", "Reported on or after YYYY-MM-DD")
	lf.StringVar(&crimeFilter.DateTo, "to", "", "Reported on or before YYYY-MM-DD")
	lf.IntVar(&crimeFilter.Page, "page", 1, "Page number")

	for _, c := range []*cobra.Command{crimesCreateCmd, crimesUpdateCmd} {
		f := c.Flags()
		f.StringVar(&crimeInput.Title, "title", "", "Title")
		f.StringVar(&crimeInput.Category, "category", "", "Category")
		f.StringVar(&crimeInput.Severity, "severity", "", "Severity: low, medium, high, critical")
		f.StringVar(&crimeInput.Description, "description", "", "Description")
		f.StringVar(&crimeInput.Location, "location", "", "Location")
		f.StringVar(&crimeInput.District, "district", "", "District")
		f.StringVar(&crimeInput.DateOccurred, "occurred", "", "Date and time occurred, e.g. \"2026-10-19 14:30\"")
		f.StringVar(&crimeInput.WeaponsUsed, "weapons", "", "Weapons used")
		f.StringVar(&crimeInput.ModusOperandi, "modus-operandi", "", "Modus operandi")
		f.IntVar(&crimeInput.VictimCount, "victims", 0, "Number of victims")
		f.StringVar(&crimeInput.VictimDetails, "victim-details", "", "Victim details")
		f.StringVar(&crimeInput.EvidenceNotes, "evidence", "", "Evidence notes")
		f.StringVar(&crimeLat, "latitude", "", "Latitude")
		f.StringVar(&crimeLong, "longitude", "", "Longitude")
	}
	crimesUpdateCmd.Flags().StringVar(&crimeInput.Status, "status", "", "Status: reported, under_investigation, solved, closed, cold_case")

	crimesDeleteCmd.Flags().BoolVarP(&confirmDelete, "yes", "y", false, "Delete without asking")

	crimesCmd.AddCommand(crimesListCmd, crimesGetCmd, crimesCreateCmd, crimesUpdateCmd,
		crimesDeleteCmd, crimesMineCmd, crimesStatsCmd)
	rootCmd.AddCommand(crimesCmd)
}

func crimeFromFlags() client.Crime {
	c := crimeInput
	c.Latitude = json.Number(crimeLat)
	c.Longitude = json.Number(crimeLong)
	return c
}

// runCrimesList lists crimes and returns exit code
func runCrimesList(ctx context.Context, w io.Writer, filter client.CrimeFilter) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	page, err := a.client.ListCrimes(ctx, filter)
	if err != nil {
		return fail(w, err)
	}
	render(w, page, func() string { return formatCrimesHuman(page, filter.Page) })
	return exitOK
}

// runCrimesMine lists the officer's own reports and returns exit code
func runCrimesMine(ctx context.Context, w io.Writer) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	page, err := a.client.MyReports(ctx)
	if err != nil {
		return fail(w, err)
	}
	render(w, page, func() string { return formatCrimesHuman(page, 1) })
	return exitOK
}

// runCrimeGet shows one crime and returns exit code
func runCrimeGet(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg, "crime ID")
	if err != nil {
		return fail(w, err)
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	crime, err := a.client.GetCrime(ctx, id)
	if err != nil {
		return fail(w, err)
	}
	render(w, crime, func() string { return formatCrimeHuman(crime) })
	return exitOK
}

// missingCrimeFields lists the required crime fields that are empty.
func missingCrimeFields(c client.Crime) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"--title", c.Title},
		{"--category", c.Category},
		{"--description", c.Description},
		{"--location", c.Location},
		{"--district", c.District},
		{"--occurred", c.DateOccurred},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// runCrimeCreate files a crime and returns exit code
func runCrimeCreate(ctx context.Context, w io.Writer, crime client.Crime) int {
	if missing := missingCrimeFields(crime); len(missing) > 0 {
		if !prompt.IsTerminal(promptIn, promptOut) {
			return usageError(w, "missing %s", strings.Join(missing, ", "))
		}
		if err := prompt.Run(prompt.CrimeForm(&crime), promptIn, promptOut); err != nil {
			return fail(w, err)
		}
	}

	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	created, err := a.client.CreateCrime(ctx, crime)
	if err != nil {
		return fail(w, err)
	}
	render(w, created, func() string {
		return widgets.StatusText(fmt.Sprintf("Filed %s", created.CaseNumber), widgets.StatusOK) +
			"\n" + formatCrimeHuman(created)
	})
	return exitOK
}

// runCrimeUpdate edits a crime and returns exit code
func runCrimeUpdate(ctx context.Context, w io.Writer, arg string, crime client.Crime) int {
	id, err := parseID(arg, "crime ID")
	if err != nil {
		return fail(w, err)
	}
	if isEmptyCrime(crime) {
		return usageError(w, "nothing to update; pass at least one field flag")
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	updated, err := a.client.UpdateCrime(ctx, id, crime)
	if err != nil {
		return fail(w, err)
	}
	render(w, updated, func() string {
		return widgets.StatusText(fmt.Sprintf("Updated %s", updated.CaseNumber), widgets.StatusOK) +
			"\n" + formatCrimeHuman(updated)
	})
	return exitOK
}

func isEmptyCrime(c client.Crime) bool {
	b, _ := json.Marshal(c)
	var fields map[string]any
	_ = json.Unmarshal(b, &fields)
	for _, v := range fields {
		if s, ok := v.(string); !ok || s != "" {
			return false
		}
	}
	return true
}

// runCrimeDelete deletes a crime and returns exit code
func runCrimeDelete(ctx context.Context, w io.Writer, arg string, yes bool) int {
	id, err := parseID(arg, "crime ID")
	if err != nil {
		return fail(w, err)
	}
	if !yes {
		if !prompt.IsTerminal(promptIn, promptOut) {
			return usageError(w, "refusing to delete without confirmation; pass --yes")
		}
		if err := prompt.Run(prompt.Confirm(fmt.Sprintf("Delete crime report %d?", id), &yes), promptIn, promptOut); err != nil {
			return fail(w, err)
		}
		if !yes {
			fmt.Fprintln(w, "Cancelled.")
			return exitOK
		}
	}

	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	if err := a.client.DeleteCrime(ctx, id); err != nil {
		return fail(w, err)
	}
	render(w, map[string]any{"deleted": id}, func() string {
		return widgets.StatusText(fmt.Sprintf("Deleted crime report %d", id), widgets.StatusOK)
	})
	return exitOK
}

// statRows converts a [{<key>: value, count: n}] list from the stats
// endpoint into bar chart rows.
func statRows(v any, key string) []widgets.BarRow {
	list, _ := v.([]any)
	var rows []widgets.BarRow
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		label, _ := m[key].(string)
		count, _ := m["count"].(float64)
		row := widgets.BarRow{Label: widgets.Humanize(label), Value: int(count)}
		switch key {
		case "severity":
			row.Color = widgets.SeverityColors[label]
		case "status":
			row.Color = widgets.CaseStatusColors[label]
		}
		rows = append(rows, row)
	}
	return rows
}

func formatCrimeStatsHuman(stats map[string]any) string {
	total, _ := stats["total_reports"].(float64)
	sections := []string{
		styles.Title.Render(fmt.Sprintf("Crime statistics: %d report(s)", int(total))),
	}
	groups := []struct{ title, field, key string }{
		{"By category", "by_category", "category"},
		{"By severity", "by_severity", "severity"},
		{"By status", "by_status", "status"},
	}
	for _, g := range groups {
		rows := statRows(stats[g.field], g.key)
		if len(rows) == 0 {
			continue
		}
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
		sections = append(sections, styles.Subtitle.Render(g.title)+"\n"+widgets.BarChart(rows, 24))
	}
	return strings.Join(sections, "\n\n")
}

// runCrimeStats prints crime statistics and returns exit code
func runCrimeStats(ctx context.Context, w io.Writer) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	stats, err := a.client.CrimeStats(ctx)
	if err != nil {
		return fail(w, err)
	}
	render(w, stats, func() string { return formatCrimeStatsHuman(stats) })
	return exitOK
}
