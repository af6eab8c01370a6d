// ABOUTME: AI analysis commands for the safepulse CLI
// ABOUTME: Case and general analysis, the investigation chat agent and stored results

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/tui/icons"
	"github.com/markalston/safepulse-cli/internal/tui/spinner"
	"github.com/markalston/safepulse-cli/internal/tui/styles"
	"github.com/markalston/safepulse-cli/internal/tui/widgets"
)

var (
	analysisPrompt string
	chatSession    string
)

var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Request AI analyses and talk to the investigation agent",
}

var analysisReportCmd = &cobra.Command{
	Use:   "report CASE_NUMBER",
	Short: "Analyze a single case",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runAnalyzeCase(ctx, w, args[0])
		})
	},
}

var analysisGeneralCmd = &cobra.Command{
	Use:   "general",
	Short: "Analyze patterns across all crime reports",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runAnalyzeGeneral(ctx, w, analysisPrompt)
		})
	},
}

var analysisChatCmd = &cobra.Command{
	Use:   "chat MESSAGE...",
	Short: "Ask the investigation agent a question",
	Long: `Ask the investigation agent a question. Pass --session with the ID printed
by a previous reply to continue that conversation.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runChat(ctx, w, strings.Join(args, " "), chatSession)
		})
	},
}

var analysisHistoryCmd = &cobra.Command{
	Use:   "history SESSION_ID",
	Short: "Show a chat conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runChatHistory(ctx, w, args[0])
		})
	},
}

var analysisResultsCmd = &cobra.Command{
	Use:   "results [ID]",
	Short: "List stored analyses, or show one",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			if len(args) == 1 {
				return runAnalysisResult(ctx, w, args[0])
			}
			return runAnalysisResults(ctx, w)
		})
	},
}

func init() {
	analysisGeneralCmd.Flags().StringVar(&analysisPrompt, "prompt", "", "Question to steer the analysis")
	analysisChatCmd.Flags().StringVar(&chatSession, "session", "", "Conversation to continue")

	analysisCmd.AddCommand(analysisReportCmd, analysisGeneralCmd, analysisChatCmd, analysisHistoryCmd, analysisResultsCmd)
	rootCmd.AddCommand(analysisCmd)
}

// runAnalyzeCase analyzes a case and returns exit code
func runAnalyzeCase(ctx context.Context, w io.Writer, caseNumber string) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	res, err := spinner.Run(ctx, progressOut, "Analyzing "+caseNumber, func(ctx context.Context) (*client.AnalysisResult, error) {
		return a.client.AnalyzeCase(ctx, caseNumber)
	})
	if err != nil {
		return fail(w, err)
	}
	render(w, res, func() string { return formatAnalysisHuman(res) })
	return exitOK
}

// runAnalyzeGeneral runs a general analysis and returns exit code
func runAnalyzeGeneral(ctx context.Context, w io.Writer, prompt string) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	res, err := spinner.Run(ctx, progressOut, "Analyzing crime patterns", func(ctx context.Context) (*client.AnalysisResult, error) {
		return a.client.AnalyzeGeneral(ctx, prompt)
	})
	if err != nil {
		return fail(w, err)
	}
	render(w, res, func() string { return formatAnalysisHuman(res) })
	return exitOK
}

// runChat sends a chat message and returns exit code
func runChat(ctx context.Context, w io.Writer, message, sessionID string) int {
	if strings.TrimSpace(message) == "" {
		return usageError(w, "message is empty")
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	reply, err := spinner.Run(ctx, progressOut, "Thinking", func(ctx context.Context) (*client.ChatReply, error) {
		return a.client.Chat(ctx, message, sessionID)
	})
	if err != nil {
		return fail(w, err)
	}
	render(w, reply, func() string {
		return styles.ValueStyle.Render(icons.Brain.String()+" Agent") + "\n" + reply.Response + "\n" +
			styles.Help.Render(fmt.Sprintf("Continue with: safepulse analysis chat --session %s ...", reply.SessionID))
	})
	return exitOK
}

// runChatHistory prints a conversation and returns exit code
func runChatHistory(ctx context.Context, w io.Writer, sessionID string) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	conv, err := a.client.ChatHistory(ctx, sessionID)
	if err != nil {
		return fail(w, err)
	}
	render(w, conv, func() string { return formatConversationHuman(conv) })
	return exitOK
}

// runAnalysisResults lists stored analyses and returns exit code
func runAnalysisResults(ctx context.Context, w io.Writer) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	page, err := a.client.ListAnalyses(ctx)
	if err != nil {
		return fail(w, err)
	}
	render(w, page, func() string { return formatAnalysesHuman(page) })
	return exitOK
}

// runAnalysisResult shows one stored analysis and returns exit code
func runAnalysisResult(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg, "analysis ID")
	if err != nil {
		return fail(w, err)
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	res, err := a.client.GetAnalysis(ctx, id)
	if err != nil {
		return fail(w, err)
	}
	render(w, res, func() string { return formatAnalysisHuman(res) })
	return exitOK
}

// rawItems flattens a JSON list (of strings or objects) into display lines.
// Anything else is shown as-is.
func rawItems(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return []string{s}
		}
		return []string{string(raw)}
	}
	items := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			items = append(items, s)
			continue
		}
		b, _ := json.Marshal(v)
		items = append(items, string(b))
	}
	return items
}

func formatAnalysisHuman(r *client.AnalysisResult) string {
	subject := "General analysis"
	if r.CaseNumber != "" {
		subject = "Case " + r.CaseNumber
	}
	var b strings.Builder
	b.WriteString(styles.Heading(icons.Brain, fmt.Sprintf("Analysis #%d: %s", r.ID, subject)))
	b.WriteString("\n" + styles.Label.Render("Risk") + " " + widgets.RiskBadge(r.RiskAssessment))
	if r.Prompt != "" {
		b.WriteString("\n" + styles.Field("Prompt", r.Prompt))
	}
	b.WriteString("\n" + styles.Field("Status", r.Status))
	if r.ErrorMessage != "" {
		b.WriteString("\n" + styles.StatusCritical.Render(r.ErrorMessage))
	}
	if r.Summary != "" {
		b.WriteString("\n\n" + styles.Panel.Render(r.Summary))
	}

	for _, sec := range []struct {
		title string
		raw   json.RawMessage
	}{
		{"Patterns", r.PatternsFound},
		{"Hotspots", r.Hotspots},
		{"Trends", r.Trends},
		{"Recommendations", r.Recommendations},
	} {
		items := rawItems(sec.raw)
		if len(items) == 0 {
			continue
		}
		b.WriteString("\n\n" + styles.Subtitle.Render(sec.title))
		for _, item := range items {
			b.WriteString("\n  • " + item)
		}
	}
	return b.String()
}

func formatAnalysesHuman(page *client.Page[client.AnalysisResult]) string {
	if len(page.Results) == 0 {
		return "No analyses yet."
	}
	t := newTable("ID", "SUBJECT", "RISK", "STATUS", "CREATED")
	for _, r := range page.Results {
		subject := r.CaseNumber
		if subject == "" {
			subject = "general"
			if r.Prompt != "" {
				subject += ": " + truncateText(r.Prompt, 30)
			}
		}
		t.Row(strconv.Itoa(r.ID), subject, widgets.RiskBadge(r.RiskAssessment), r.Status, r.CreatedAt)
	}
	return t.String()
}

func formatConversationHuman(conv *client.Conversation) string {
	var b strings.Builder
	b.WriteString(styles.Heading(icons.Brain, conv.Title))
	b.WriteString("\n" + styles.Subtitle.Render(fmt.Sprintf("Session %s, %d message(s)", conv.SessionID, len(conv.Messages))))
	for _, m := range conv.Messages {
		who := "You"
		if m.Role != "user" {
			who = "Agent"
		}
		b.WriteString("\n\n" + styles.ValueStyle.Render(who) + " " + styles.Subtitle.Render(m.CreatedAt) + "\n" + m.Content)
	}
	return b.String()
}
