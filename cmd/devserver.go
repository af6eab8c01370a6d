// ABOUTME: Hidden dev-server command running the in-process fake backend
// ABOUTME: Lets the CLI be exercised end to end without the real service

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/markalston/safepulse-cli/internal/config"
	"github.com/markalston/safepulse-cli/internal/fakebackend"
	"github.com/markalston/safepulse-cli/internal/logger"
)

// devServerOptions are the flags of the dev-server command.
type devServerOptions struct {
	Addr       string
	SampleData bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

var devServerOpts devServerOptions

var devServerCmd = &cobra.Command{
	Use:    "dev-server",
	Short:  "Run a local fake SafePulse backend",
	Hidden: true,
	Long: `Run an in-memory stand-in for the SafePulse backend. It implements the
authentication, crime, dashboard, analysis and report endpoints with short-lived
access tokens so refresh behaviour can be observed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runDevServer(ctx, w, devServerOpts)
		})
	},
}

func init() {
	f := devServerCmd.Flags()
	f.StringVar(&devServerOpts.Addr, "addr", "127.0.0.1:8000", "Listen address")
	f.BoolVar(&devServerOpts.SampleData, "sample-data", true, "Seed sample crime reports")
	f.DurationVar(&devServerOpts.AccessTTL, "access-ttl", 5*time.Minute, "Access token lifetime")
	f.DurationVar(&devServerOpts.RefreshTTL, "refresh-ttl", 24*time.Hour, "Refresh token lifetime")
	rootCmd.AddCommand(devServerCmd)
}

// runDevServer serves the fake backend until ctx is cancelled and returns
// exit code
func runDevServer(ctx context.Context, w io.Writer, opts devServerOptions) int {
	cfg, err := config.Load()
	if err != nil {
		return fail(w, err)
	}
	log := logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	backend := fakebackend.New(fakebackend.Options{
		AccessTTL:  opts.AccessTTL,
		RefreshTTL: opts.RefreshTTL,
		SampleData: opts.SampleData,
		Logger:     log,
	})
	defer backend.Close()

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           backend,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	fmt.Fprintf(w, "Fake backend listening on http://%s\n", opts.Addr)
	fmt.Fprintf(w, "Sign in with: safepulse login --api-url http://%s --badge %s --password %s\n",
		opts.Addr, fakebackend.DefaultBadge, fakebackend.DefaultPassword)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fail(w, err)
		}
		return exitOK
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown failed", "error", err)
	}
	return exitOK
}
