// ABOUTME: Dashboard command for the safepulse CLI
// ABOUTME: Fetches dashboard aggregates in parallel and renders them as text panels

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/tui/icons"
	"github.com/markalston/safepulse-cli/internal/tui/styles"
	"github.com/markalston/safepulse-cli/internal/tui/widgets"
)

// dashboardOptions are the flags of the dashboard command.
type dashboardOptions struct {
	Period   string
	Limit    int
	Category string
	District string
}

var dashboardOpts dashboardOptions

var dashboardSections = []string{"overview", "categories", "severity", "hotspots", "trends", "alerts", "recent", "mine", "matrix"}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [section]",
	Short: "Show crime dashboard aggregates",
	Long: `Show the crime dashboard. Without a section, a summary of the overview,
breakdowns, hotspots, monthly trend and alerts is shown.

Sections: ` + strings.Join(dashboardSections, ", "),
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: dashboardSections,
	Run: func(cmd *cobra.Command, args []string) {
		section := ""
		if len(args) == 1 {
			section = args[0]
		}
		execute(func(ctx context.Context, w io.Writer) int {
			return runDashboard(ctx, w, section, dashboardOpts)
		})
	},
}

func init() {
	f := dashboardCmd.Flags()
	f.StringVar(&dashboardOpts.Period, "period", client.PeriodMonth, "Period for breakdowns and hotspots: week, month, year, all")
	f.IntVar(&dashboardOpts.Limit, "limit", 10, "Maximum rows for hotspots and recent crimes")
	f.StringVar(&dashboardOpts.Category, "category", "", "Category filter for the matrix section")
	f.StringVar(&dashboardOpts.District, "district", "", "District filter for the matrix section")
	rootCmd.AddCommand(dashboardCmd)
}

// dashboardSummary is the default dashboard view.
type dashboardSummary struct {
	Overview   *client.Overview     `json:"overview"`
	Categories []client.CountBucket `json:"categories"`
	Severity   []client.CountBucket `json:"severity"`
	Hotspots   []client.Hotspot     `json:"hotspots"`
	Monthly    []client.TrendPoint  `json:"monthly_trends"`
	Alerts     []client.CaseSummary `json:"alerts"`
}

// fetchDashboard loads the summary views concurrently. A failure in any view
// cancels the rest.
func fetchDashboard(ctx context.Context, c *client.Client, opts dashboardOptions) (*dashboardSummary, error) {
	var d dashboardSummary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Overview, err = c.Overview(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Categories, err = c.CrimesByCategory(ctx, opts.Period)
		return err
	})
	g.Go(func() (err error) {
		d.Severity, err = c.CrimesBySeverity(ctx, opts.Period)
		return err
	})
	g.Go(func() (err error) {
		d.Hotspots, err = c.Hotspots(ctx, opts.Period, min(opts.Limit, 5))
		return err
	})
	g.Go(func() (err error) {
		d.Monthly, err = c.MonthlyTrends(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.Alerts, err = c.Alerts(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// runDashboard renders a dashboard section and returns exit code
func runDashboard(ctx context.Context, w io.Writer, section string, opts dashboardOptions) int {
	if section != "" && !slices.Contains(dashboardSections, section) {
		return usageError(w, "unknown section %q (want one of %s)", section, strings.Join(dashboardSections, ", "))
	}
	switch opts.Period {
	case client.PeriodWeek, client.PeriodMonth, client.PeriodYear, client.PeriodAll:
	default:
		return usageError(w, "invalid --period %q (want week, month, year or all)", opts.Period)
	}
	if opts.Limit < 1 {
		opts.Limit = 10
	}

	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	c := a.client

	var (
		out   any
		human func() string
		err   error
	)
	switch section {
	case "":
		var d *dashboardSummary
		if d, err = fetchDashboard(ctx, c, opts); err == nil {
			out, human = d, func() string { return formatDashboardHuman(d, opts.Period) }
		}
	case "overview":
		var o *client.Overview
		if o, err = c.Overview(ctx); err == nil {
			out, human = o, func() string { return formatOverviewHuman(o) }
		}
	case "categories":
		var b []client.CountBucket
		if b, err = c.CrimesByCategory(ctx, opts.Period); err == nil {
			out, human = b, func() string { return formatBucketsHuman("Crimes by category", opts.Period, b) }
		}
	case "severity":
		var b []client.CountBucket
		if b, err = c.CrimesBySeverity(ctx, opts.Period); err == nil {
			out, human = b, func() string { return formatBucketsHuman("Crimes by severity", opts.Period, b) }
		}
	case "hotspots":
		var h []client.Hotspot
		if h, err = c.Hotspots(ctx, opts.Period, opts.Limit); err == nil {
			out, human = h, func() string { return formatHotspotsHuman(h) }
		}
	case "trends":
		var monthly, daily []client.TrendPoint
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			monthly, err = c.MonthlyTrends(gctx)
			return err
		})
		g.Go(func() (err error) {
			daily, err = c.DailyTrends(gctx)
			return err
		})
		if err = g.Wait(); err == nil {
			out = map[string][]client.TrendPoint{"monthly": monthly, "daily": daily}
			human = func() string {
				return formatTrendHuman("Monthly (last 12 months)", monthly) + "\n\n" +
					formatTrendHuman("Daily (last 30 days)", daily)
			}
		}
	case "alerts":
		var cs []client.CaseSummary
		if cs, err = c.Alerts(ctx); err == nil {
			out, human = cs, func() string { return formatAlertsHuman(cs) }
		}
	case "recent":
		var cs []client.CaseSummary
		if cs, err = c.RecentCrimes(ctx, opts.Limit); err == nil {
			out, human = cs, func() string { return formatRecentHuman(cs) }
		}
	case "mine":
		var raw json.RawMessage
		if raw, err = c.MyStats(ctx); err == nil {
			out, human = raw, func() string { return formatMyStatsHuman(raw) }
		}
	case "matrix":
		var m []client.CategoryDistrictCount
		if m, err = c.CategoryDistrict(ctx, opts.Category, opts.District); err == nil {
			out, human = m, func() string { return formatMatrixHuman(m) }
		}
	}
	if err != nil {
		return fail(w, err)
	}

	render(w, out, human)
	return exitOK
}

func formatOverviewHuman(o *client.Overview) string {
	alertLevel := widgets.StatusOK
	if o.Crimes.HighPriority > 0 {
		alertLevel = widgets.StatusWarning
	}
	crimes := widgets.Tiles(
		widgets.Count(icons.Case, "Total", o.Crimes.Total, "crime reports", widgets.StatusInfo),
		widgets.Count(icons.Chart, "This week", o.Crimes.ThisWeek, fmt.Sprintf("%d this month", o.Crimes.ThisMonth), widgets.StatusInfo),
		widgets.Count(icons.Alert, "High priority", o.Crimes.HighPriority, "open high/critical", alertLevel),
		widgets.Metric{
			Icon:  icons.Shield,
			Label: "Solve rate",
			Value: fmt.Sprintf("%.1f%%", o.Crimes.SolveRatePercent),
			Note:  fmt.Sprintf("%d solved", o.ByStatus.Solved),
			Level: widgets.StatusOK,
		},
	)

	status := widgets.BarChart([]widgets.BarRow{
		{Label: "Reported", Value: o.ByStatus.Reported, Color: widgets.CaseStatusColors["reported"]},
		{Label: "Under Investigation", Value: o.ByStatus.UnderInvestigation, Color: widgets.CaseStatusColors["under_investigation"]},
		{Label: "Solved", Value: o.ByStatus.Solved, Color: widgets.CaseStatusColors["solved"]},
		{Label: "Cold Case", Value: o.ByStatus.ColdCases, Color: widgets.CaseStatusColors["cold_case"]},
	}, 24)

	system := styles.Subtitle.Render(fmt.Sprintf("%d analyses, %d reports generated, %d active officers",
		o.System.TotalAnalyses, o.System.TotalReports, o.System.ActiveOfficers))

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Heading(icons.Shield, "SafePulse overview"),
		crimes,
		"",
		status,
		system,
	)
}

func formatBucketsHuman(title, period string, buckets []client.CountBucket) string {
	head := styles.Title.Render(fmt.Sprintf("%s (%s)", title, period))
	if len(buckets) == 0 {
		return head + "\nNo crimes in this period."
	}
	rows := make([]widgets.BarRow, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, widgets.BarRow{Label: b.Label, Value: b.Count, Color: lipgloss.Color(b.Color)})
	}
	return head + "\n" + widgets.BarChart(rows, 30)
}

func formatHotspotsHuman(hotspots []client.Hotspot) string {
	if len(hotspots) == 0 {
		return "No hotspots in this period."
	}
	t := newTable("DISTRICT", "TOTAL", "HIGH/CRITICAL", "UNSOLVED", "RISK")
	for _, h := range hotspots {
		t.Row(icons.MapPin.String()+" "+h.District, strconv.Itoa(h.Total), strconv.Itoa(h.HighSeverity),
			strconv.Itoa(h.Unsolved), widgets.RiskBadge(h.RiskLevel))
	}
	return t.String()
}

func formatTrendHuman(title string, points []client.TrendPoint) string {
	head := styles.Subtitle.Render(title)
	if len(points) == 0 {
		return head + "\nNo data."
	}
	counts := make([]int, len(points))
	total := 0
	for i, p := range points {
		counts[i] = p.Count
		total += p.Count
	}
	line := widgets.Sparkline(counts, 60, styles.Accent) + " " + widgets.TrendArrow(counts)
	span := points[0].Label
	if len(points) > 1 {
		span += " to " + points[len(points)-1].Label
	}
	return fmt.Sprintf("%s\n%s  %d crime(s), %s", head, line, total, span)
}

func formatAlertsHuman(alerts []client.CaseSummary) string {
	if len(alerts) == 0 {
		return widgets.StatusText("No open high-priority cases", widgets.StatusOK)
	}
	t := newTable("CASE", "TITLE", "SEVERITY", "STATUS", "DISTRICT", "DAYS OPEN")
	for _, c := range alerts {
		t.Row(c.CaseNumber, truncateText(c.Title, 36), widgets.SeverityBadge(c.Severity),
			widgets.CaseStatusBadge(c.Status), c.District, strconv.Itoa(c.DaysOpen))
	}
	return widgets.StatusText(fmt.Sprintf("%d open high-priority case(s)", len(alerts)), widgets.StatusWarning) +
		"\n" + t.String()
}

func formatRecentHuman(recent []client.CaseSummary) string {
	if len(recent) == 0 {
		return "No crime reports yet."
	}
	t := newTable("CASE", "TITLE", "CATEGORY", "SEVERITY", "STATUS", "REPORTED", "BY")
	for _, c := range recent {
		t.Row(c.CaseNumber, truncateText(c.Title, 36), c.Category, widgets.SeverityBadge(c.Severity),
			widgets.CaseStatusBadge(c.Status), c.DateReported, c.ReportedBy)
	}
	return t.String()
}

// myStats is the part of the my-stats payload the human view shows.
type myStats struct {
	Officer struct {
		Name        string `json:"name"`
		BadgeNumber string `json:"badge_number"`
	} `json:"officer"`
	MyCrimes struct {
		Total    int `json:"total"`
		ByStatus []struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		} `json:"by_status"`
		ByCategory []struct {
			Category string `json:"category"`
			Count    int    `json:"count"`
		} `json:"by_category"`
	} `json:"my_crimes"`
	MyActivity struct {
		TotalAnalyses         int `json:"total_analyses"`
		TotalReportsGenerated int `json:"total_reports_generated"`
	} `json:"my_activity"`
}

func formatMyStatsHuman(raw json.RawMessage) string {
	var s myStats
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	var b strings.Builder
	b.WriteString(styles.Heading(icons.Officer, fmt.Sprintf("%s (%s)", s.Officer.Name, s.Officer.BadgeNumber)))
	b.WriteString("\n" + styles.Field("Reports filed", strconv.Itoa(s.MyCrimes.Total)))
	b.WriteString("\n" + styles.Field("Analyses", strconv.Itoa(s.MyActivity.TotalAnalyses)))
	b.WriteString("\n" + styles.Field("Reports made", strconv.Itoa(s.MyActivity.TotalReportsGenerated)))

	if len(s.MyCrimes.ByStatus) > 0 {
		var rows []widgets.BarRow
		for _, r := range s.MyCrimes.ByStatus {
			rows = append(rows, widgets.BarRow{Label: widgets.Humanize(r.Status), Value: r.Count, Color: widgets.CaseStatusColors[r.Status]})
		}
		b.WriteString("\n\n" + styles.Subtitle.Render("By status") + "\n" + widgets.BarChart(rows, 20))
	}
	if len(s.MyCrimes.ByCategory) > 0 {
		var rows []widgets.BarRow
		for _, r := range s.MyCrimes.ByCategory {
			rows = append(rows, widgets.BarRow{Label: widgets.Humanize(r.Category), Value: r.Count})
		}
		b.WriteString("\n\n" + styles.Subtitle.Render("Top categories") + "\n" + widgets.BarChart(rows, 20))
	}
	return b.String()
}

func formatMatrixHuman(cells []client.CategoryDistrictCount) string {
	if len(cells) == 0 {
		return "No matching crimes."
	}
	t := newTable("CATEGORY", "DISTRICT", "COUNT")
	for _, c := range cells {
		t.Row(c.Category, c.District, strconv.Itoa(c.Count))
	}
	return t.String()
}

func formatDashboardHuman(d *dashboardSummary, period string) string {
	parts := []string{
		formatOverviewHuman(d.Overview),
		formatBucketsHuman("Crimes by category", period, d.Categories),
		formatBucketsHuman("Crimes by severity", period, d.Severity),
		styles.Title.Render("Hotspots (" + period + ")") + "\n" + formatHotspotsHuman(d.Hotspots),
		formatTrendHuman("Monthly trend", d.Monthly),
		formatAlertsHuman(d.Alerts),
	}
	return strings.Join(parts, "\n\n")
}
