// ABOUTME: Report generation commands for the safepulse CLI
// ABOUTME: Downloads crime list, case and analysis reports and lists report history

package cmd

import (
	"context"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/tui/spinner"
	"github.com/markalston/safepulse-cli/internal/tui/widgets"
)

var (
	reportFilter client.ReportFilter
	reportFormat string
	reportOutput string
)

var reportsCmd = &cobra.Command{
	Use:     "reports",
	Aliases: []string{"report"},
	Short:   "Generate PDF and Excel reports",
}

var reportsCrimeListCmd = &cobra.Command{
	Use:   "crime-list",
	Short: "Download the filtered crime list as PDF or Excel",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCrimeListReport(ctx, w, reportFilter, reportFormat, reportOutput)
		})
	},
}

var reportsCrimeCmd = &cobra.Command{
	Use:   "crime CASE_NUMBER",
	Short: "Download a single case report as PDF",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCaseReport(ctx, w, args[0], reportOutput)
		})
	},
}

var reportsAnalysisCmd = &cobra.Command{
	Use:   "analysis ID",
	Short: "Download a stored analysis as PDF",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runAnalysisReport(ctx, w, args[0], reportOutput)
		})
	},
}

var reportsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List the reports you generated",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runReportHistory)
	},
}

func init() {
	f := reportsCrimeListCmd.Flags()
	f.StringVar(&reportFilter.Category, "category", "", "Category filter")
	f.StringVar(&reportFilter.Severity, "severity", "", "Severity filter")
	f.StringVar(&reportFilter.Status, "status", "", "Status filter")
	f.StringVar(&reportFilter.District, "district", "", "District filter")
	f.StringVar(&reportFormat, "format", "pdf", "Output format: pdf or excel")

	for _, c := range []*cobra.Command{reportsCrimeListCmd, reportsCrimeCmd, reportsAnalysisCmd} {
		c.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file (default: name from the backend)")
	}

	reportsCmd.AddCommand(reportsCrimeListCmd, reportsCrimeCmd, reportsAnalysisCmd, reportsHistoryCmd)
	rootCmd.AddCommand(reportsCmd)
}

// runCrimeListReport downloads the crime list and returns exit code
func runCrimeListReport(ctx context.Context, w io.Writer, filter client.ReportFilter, format, output string) int {
	switch format {
	case "pdf":
	case "excel", "xlsx", "xls":
		format = "excel"
	default:
		return usageError(w, "invalid --format %q (want pdf or excel)", format)
	}

	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	gen := a.client.CrimeListPDF
	if format == "excel" {
		gen = a.client.CrimeListExcel
	}
	d, err := spinner.Run(ctx, progressOut, "Generating crime list report", func(ctx context.Context) (*client.Download, error) {
		return gen(ctx, filter)
	})
	if err != nil {
		return fail(w, err)
	}
	return saveDownload(w, d, output)
}

// runCaseReport downloads a case report and returns exit code
func runCaseReport(ctx context.Context, w io.Writer, caseNumber, output string) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	d, err := spinner.Run(ctx, progressOut, "Generating report for "+caseNumber, func(ctx context.Context) (*client.Download, error) {
		return a.client.CasePDF(ctx, caseNumber)
	})
	if err != nil {
		return fail(w, err)
	}
	return saveDownload(w, d, output)
}

// runAnalysisReport downloads an analysis report and returns exit code
func runAnalysisReport(ctx context.Context, w io.Writer, arg, output string) int {
	id, err := parseID(arg, "analysis ID")
	if err != nil {
		return fail(w, err)
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	d, err := spinner.Run(ctx, progressOut, "Generating analysis report", func(ctx context.Context) (*client.Download, error) {
		return a.client.AnalysisPDF(ctx, id)
	})
	if err != nil {
		return fail(w, err)
	}
	return saveDownload(w, d, output)
}

// runReportHistory lists generated reports and returns exit code
func runReportHistory(ctx context.Context, w io.Writer) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	page, err := a.client.ReportHistory(ctx)
	if err != nil {
		return fail(w, err)
	}
	render(w, page, func() string {
		if len(page.Results) == 0 {
			return "No reports generated yet."
		}
		t := newTable("ID", "TITLE", "TYPE", "FORMAT", "CREATED")
		for _, r := range page.Results {
			t.Row(strconv.Itoa(r.ID), r.Title, widgets.Humanize(r.ReportType), r.ReportFormat, r.CreatedAt)
		}
		return t.String()
	})
	return exitOK
}
