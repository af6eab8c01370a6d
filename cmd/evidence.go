// ABOUTME: Suspect, witness and bulk upload commands for crime reports
// ABOUTME: crimes suspect/witness add|rm, crimes upload and crimes template

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/tui/spinner"
	"github.com/markalston/safepulse-cli/internal/tui/styles"
	"github.com/markalston/safepulse-cli/internal/tui/widgets"
)

var (
	suspectInput   client.Suspect
	witnessInput   client.Witness
	templateOutput string
)

var suspectCmd = &cobra.Command{
	Use:   "suspect",
	Short: "Add or remove suspects on a crime report",
}

var suspectAddCmd = &cobra.Command{
	Use:   "add CRIME_ID",
	Short: "Add a suspect",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runSuspectAdd(ctx, w, args[0], suspectInput)
		})
	},
}

var suspectRemoveCmd = &cobra.Command{
	Use:     "rm CRIME_ID SUSPECT_ID",
	Aliases: []string{"remove"},
	Short:   "Remove a suspect",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runSuspectRemove(ctx, w, args[0], args[1])
		})
	},
}

var witnessCmd = &cobra.Command{
	Use:   "witness",
	Short: "Add or remove witnesses on a crime report",
}

var witnessAddCmd = &cobra.Command{
	Use:   "add CRIME_ID",
	Short: "Add a witness",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runWitnessAdd(ctx, w, args[0], witnessInput)
		})
	},
}

var witnessRemoveCmd = &cobra.Command{
	Use:     "rm CRIME_ID WITNESS_ID",
	Aliases: []string{"remove"},
	Short:   "Remove a witness",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runWitnessRemove(ctx, w, args[0], args[1])
		})
	},
}

var crimesUploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Bulk import crime reports from a CSV or Excel file",
	Long: `Bulk import crime reports. Run 'safepulse crimes template' for the
expected columns. Rows with errors are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCrimesUpload(ctx, w, args[0])
		})
	},
}

var crimesTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Download the bulk upload template",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runCrimesTemplate(ctx, w, templateOutput)
		})
	},
}

func init() {
	sf := suspectAddCmd.Flags()
	sf.StringVar(&suspectInput.Name, "name", "", "Name, if known")
	sf.StringVar(&suspectInput.Alias, "alias", "", "Alias")
	sf.IntVar(&suspectInput.AgeEstimate, "age", 0, "Estimated age")
	sf.StringVar(&suspectInput.Gender, "gender", "", "Gender: male, female, unknown")
	sf.StringVar(&suspectInput.Nationality, "nationality", "", "Nationality")
	sf.StringVar(&suspectInput.Description, "description", "", "Physical description")
	sf.BoolVar(&suspectInput.KnownToVictim, "known-to-victim", false, "Suspect is known to the victim")
	sf.BoolVar(&suspectInput.IsArrested, "arrested", false, "Suspect is in custody")

	wf := witnessAddCmd.Flags()
	wf.StringVar(&witnessInput.Name, "name", "", "Name")
	wf.StringVar(&witnessInput.Contact, "contact", "", "Contact details")
	wf.StringVar(&witnessInput.Statement, "statement", "", "Statement")
	wf.BoolVar(&witnessInput.IsAnonymous, "anonymous", false, "Keep the witness anonymous")

	crimesTemplateCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Output file (default: name from the backend)")

	suspectCmd.AddCommand(suspectAddCmd, suspectRemoveCmd)
	witnessCmd.AddCommand(witnessAddCmd, witnessRemoveCmd)
	crimesCmd.AddCommand(suspectCmd, witnessCmd, crimesUploadCmd, crimesTemplateCmd)
}

// runSuspectAdd adds a suspect and returns exit code
func runSuspectAdd(ctx context.Context, w io.Writer, arg string, suspect client.Suspect) int {
	crimeID, err := parseID(arg, "crime ID")
	if err != nil {
		return fail(w, err)
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	added, err := a.client.AddSuspect(ctx, crimeID, suspect)
	if err != nil {
		return fail(w, err)
	}
	render(w, added, func() string {
		name := added.Name
		if name == "" {
			name = "unidentified suspect"
		}
		return widgets.StatusText(fmt.Sprintf("Added %s (suspect %d) to crime report %d", name, added.ID, crimeID), widgets.StatusOK)
	})
	return exitOK
}

// runSuspectRemove removes a suspect and returns exit code
func runSuspectRemove(ctx context.Context, w io.Writer, crimeArg, suspectArg string) int {
	crimeID, err := parseID(crimeArg, "crime ID")
	if err != nil {
		return fail(w, err)
	}
	suspectID, err := parseID(suspectArg, "suspect ID")
	if err != nil {
		return fail(w, err)
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	if err := a.client.RemoveSuspect(ctx, crimeID, suspectID); err != nil {
		return fail(w, err)
	}
	render(w, map[string]int{"crime_id": crimeID, "removed_suspect": suspectID}, func() string {
		return widgets.StatusText(fmt.Sprintf("Removed suspect %d from crime report %d", suspectID, crimeID), widgets.StatusOK)
	})
	return exitOK
}

// runWitnessAdd adds a witness and returns exit code
func runWitnessAdd(ctx context.Context, w io.Writer, arg string, witness client.Witness) int {
	crimeID, err := parseID(arg, "crime ID")
	if err != nil {
		return fail(w, err)
	}
	if witness.Name == "" {
		return usageError(w, "--name is required")
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	added, err := a.client.AddWitness(ctx, crimeID, witness)
	if err != nil {
		return fail(w, err)
	}
	render(w, added, func() string {
		return widgets.StatusText(fmt.Sprintf("Added witness %d to crime report %d", added.ID, crimeID), widgets.StatusOK)
	})
	return exitOK
}

// runWitnessRemove removes a witness and returns exit code
func runWitnessRemove(ctx context.Context, w io.Writer, crimeArg, witnessArg string) int {
	crimeID, err := parseID(crimeArg, "crime ID")
	if err != nil {
		return fail(w, err)
	}
	witnessID, err := parseID(witnessArg, "witness ID")
	if err != nil {
		return fail(w, err)
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	if err := a.client.RemoveWitness(ctx, crimeID, witnessID); err != nil {
		return fail(w, err)
	}
	render(w, map[string]int{"crime_id": crimeID, "removed_witness": witnessID}, func() string {
		return widgets.StatusText(fmt.Sprintf("Removed witness %d from crime report %d", witnessID, crimeID), widgets.StatusOK)
	})
	return exitOK
}

// runCrimesUpload bulk imports a file and returns exit code
func runCrimesUpload(ctx context.Context, w io.Writer, path string) int {
	f, err := os.Open(path)
	if err != nil {
		return fail(w, err)
	}
	defer f.Close()

	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	res, err := spinner.Run(ctx, progressOut, "Uploading "+filepath.Base(path), func(ctx context.Context) (*client.UploadResult, error) {
		return a.client.UploadCrimes(ctx, filepath.Base(path), f)
	})
	if err != nil {
		return fail(w, err)
	}
	render(w, res, func() string { return formatUploadHuman(res) })
	return exitOK
}

func formatUploadHuman(res *client.UploadResult) string {
	s := res.Summary
	level := widgets.StatusOK
	if s.Errors > 0 || s.Skipped > 0 {
		level = widgets.StatusWarning
	}
	var b strings.Builder
	b.WriteString(widgets.StatusText(
		fmt.Sprintf("Created %d of %d row(s): %d skipped, %d with errors", s.Created, s.TotalRows, s.Skipped, s.Errors),
		level))

	if len(res.CreatedCases) > 0 {
		t := newTable("ROW", "CASE", "TITLE", "SEVERITY", "DISTRICT")
		for _, c := range res.CreatedCases {
			t.Row(strconv.Itoa(c.Row), c.CaseNumber, truncateText(c.Title, 40), widgets.SeverityBadge(c.Severity), c.District)
		}
		b.WriteString("\n" + t.String())
	}
	for _, row := range res.ErrorRows {
		b.WriteString("\n" + styles.StatusCritical.Render("error: ") + string(row))
	}
	for _, row := range res.SkippedRows {
		b.WriteString("\n" + styles.Subtitle.Render("skipped: "+string(row)))
	}
	return b.String()
}

// runCrimesTemplate saves the upload template and returns exit code
func runCrimesTemplate(ctx context.Context, w io.Writer, output string) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	d, err := a.client.UploadTemplate(ctx)
	if err != nil {
		return fail(w, err)
	}
	return saveDownload(w, d, output)
}

// saveDownload writes d and reports where it went.
func saveDownload(w io.Writer, d *client.Download, output string) int {
	path, err := writeDownload(d, output)
	if err != nil {
		return fail(w, err)
	}
	res := downloadResult{Path: path, ContentType: d.ContentType, Bytes: len(d.Data)}
	render(w, res, func() string { return formatDownloadHuman(res) })
	return exitOK
}
