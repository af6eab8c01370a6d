// ABOUTME: Root command for the safepulse CLI
// ABOUTME: Handles global flags, configuration and the shared session-backed client

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/config"
	"github.com/markalston/safepulse-cli/internal/logger"
	"github.com/markalston/safepulse-cli/internal/session"
	"github.com/markalston/safepulse-cli/internal/tui/icons"
	"github.com/markalston/safepulse-cli/internal/tui/styles"
)

var (
	apiURL     string
	jsonOutput bool
	ephemeral  bool
)

// Prompts and spinners draw here so stdout stays clean for piping.
var (
	promptIn    io.Reader = os.Stdin
	promptOut   io.Writer = os.Stderr
	progressOut io.Writer = os.Stderr
)

// Exit codes shared by every command.
const (
	exitOK       = 0
	exitRejected = 1
	exitUsage    = 2
	exitSession  = 3
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "safepulse",
	Short: "CLI for the SafePulse crime reporting backend",
	Long: `safepulse is a command-line client for the SafePulse crime reporting and
analysis backend.

Officers sign in once; the session is kept in the user config directory and
access tokens are refreshed transparently until the refresh token expires.

Environment Variables:
  SAFEPULSE_API_URL       Backend API URL (default: http://localhost:8000)
  SAFEPULSE_SESSION_FILE  Session file (default: $XDG_CONFIG_HOME/safepulse/session.json)
  SAFEPULSE_TIMEOUT       Per-request timeout in seconds (default: 30)
  SAFEPULSE_ICONS         Icon set: auto, nerd, unicode, ascii (default: auto)
  LOG_LEVEL, LOG_FORMAT   Diagnostic logging on stderr (default: warn, text)

Exit codes: 0 ok, 1 rejected by the backend, 2 usage or connection error,
3 not logged in or session expired.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides SAFEPULSE_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only for this invocation")
}

// GetAPIURL returns the API URL from flag, env, or default (in priority order)
func GetAPIURL(cfg *config.Config) string {
	if apiURL != "" {
		return strings.TrimRight(apiURL, "/")
	}
	return cfg.APIURL
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// execute runs fn with a context cancelled on SIGINT/SIGTERM and exits with
// its code.
func execute(fn func(ctx context.Context, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	exitCode := fn(ctx, os.Stdout)
	if exitCode != exitOK {
		cancel()
		os.Exit(exitCode)
	}
}

// app bundles what a command needs to talk to the backend.
type app struct {
	cfg    *config.Config
	store  *session.Store
	client *client.Client
	logger *slog.Logger
}

// newApp loads configuration, rehydrates the session and builds the client.
// Session-expiry notices are written to w.
func newApp(w io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	icons.SetMode(cfg.Icons)

	var storage session.Storage
	if ephemeral {
		storage = session.NewMemoryStorage()
	} else {
		path := cfg.SessionFile
		if path == "" {
			path = session.DefaultPath()
		}
		storage = session.NewFileStorage(path)
	}
	store := session.NewStore(storage)
	if err := store.Init(); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	c := client.New(GetAPIURL(cfg), store,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(log),
		client.WithSessionExpiredHandler(func(error) {
			fmt.Fprintln(w, styles.StatusWarning.Render("Session expired. Run 'safepulse login' to sign in again."))
		}),
	)

	return &app{cfg: cfg, store: store, client: c, logger: log}, nil
}

// newAuthedApp is newApp for commands that need a logged-in officer.
func newAuthedApp(w io.Writer) (*app, int) {
	a, err := newApp(w)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return nil, exitUsage
	}
	if !a.store.Session().IsAuthenticated {
		return nil, fail(w, session.ErrNotAuthenticated)
	}
	return a, exitOK
}

// exitCodeFor maps an error to the CLI exit code.
func exitCodeFor(err error) int {
	var apiErr *client.APIError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, session.ErrNotAuthenticated), client.IsSessionExpired(err):
		return exitSession
	case errors.As(err, &apiErr):
		return exitRejected
	}
	return exitUsage
}

// fail prints err and returns its exit code.
func fail(w io.Writer, err error) int {
	if errors.Is(err, session.ErrNotAuthenticated) {
		fmt.Fprintln(w, "Error: not logged in. Run 'safepulse login' first.")
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return exitCodeFor(err)
}

// usageError prints a usage problem and returns exitUsage.
func usageError(w io.Writer, format string, args ...any) int {
	fmt.Fprintf(w, "Error: "+format+"\n", args...)
	return exitUsage
}

// formatJSON renders v as indented JSON.
func formatJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

// render prints v as JSON or through human.
func render(w io.Writer, v any, human func() string) {
	if IsJSONOutput() {
		fmt.Fprintln(w, formatJSON(v))
		return
	}
	fmt.Fprintln(w, human())
}
