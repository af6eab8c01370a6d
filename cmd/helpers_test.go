// ABOUTME: Shared fixtures for command tests
// ABOUTME: Runs commands against the fake backend with an isolated session file

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/config"
	"github.com/markalston/safepulse-cli/internal/fakebackend"
	"github.com/markalston/safepulse-cli/internal/logger"
)

type testEnv struct {
	backend     *fakebackend.Server
	server      *httptest.Server
	sessionFile string
}

// newTestEnv starts a fake backend and points the command globals at it.
func newTestEnv(t *testing.T, sampleData bool) *testEnv {
	t.Helper()
	backend := fakebackend.New(fakebackend.Options{
		SampleData: sampleData,
		Logger:     logger.Discard(),
	})
	server := httptest.NewServer(backend)

	env := &testEnv{
		backend:     backend,
		server:      server,
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
	t.Setenv(config.EnvSessionFile, env.sessionFile)
	t.Setenv(config.EnvLogLevel, "error")

	apiURL = server.URL
	jsonOutput = false
	ephemeral = false
	promptIn = strings.NewReader("")
	promptOut = io.Discard
	progressOut = io.Discard

	t.Cleanup(func() {
		server.Close()
		backend.Close()
		apiURL = ""
		jsonOutput = false
		ephemeral = false
	})
	return env
}

// run calls a command function and returns its exit code and output.
func run(fn func(ctx context.Context, w io.Writer) int) (int, string) {
	var buf bytes.Buffer
	code := fn(context.Background(), &buf)
	return code, buf.String()
}

// runJSON calls a command function with --json and decodes its output.
func runJSON(t *testing.T, fn func(ctx context.Context, w io.Writer) int, out any) {
	t.Helper()
	jsonOutput = true
	defer func() { jsonOutput = false }()

	code, output := run(fn)
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, output)
	}
	if err := json.Unmarshal([]byte(output), out); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, output)
	}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	code, output := run(func(ctx context.Context, w io.Writer) int {
		return runLogin(ctx, w, client.Credentials{
			BadgeNumber: fakebackend.DefaultBadge,
			Password:    fakebackend.DefaultPassword,
		})
	})
	if code != exitOK {
		t.Fatalf("login failed with exit code %d: %s", code, output)
	}
}

func assertContains(t *testing.T, output string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}
}
