// ABOUTME: Tests for slog configuration
// ABOUTME: Covers level parsing, output formats and credential redaction

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelWarn},
		{"verbose", slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Init(&buf, "info", "json")
	slog.Info("Officer logged in", "badge_number", "B-100")
	slog.Debug("hidden")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "Officer logged in" || entry["badge_number"] != "B-100" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestInit_TextDefaultsToWarn(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := Init(&buf, "", "")
	l.Info("quiet")
	l.Warn("Session expired")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info must be filtered at the default level")
	}
	if !strings.Contains(out, "msg=\"Session expired\"") {
		t.Errorf("expected text warn line, got %q", out)
	}
}

func TestInit_RedactsCredentials(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := Init(&buf, "debug", "json")
	l.Debug("Token pair stored", "refresh_token", "eyJhbGciOi", "Authorization", "Bearer abc", "badge_number", "UPF-001")

	out := buf.String()
	if strings.Contains(out, "eyJhbGciOi") || strings.Contains(out, "Bearer abc") {
		t.Errorf("expected credentials to be redacted, got %q", out)
	}
	if !strings.Contains(out, Redacted) || !strings.Contains(out, "UPF-001") {
		t.Errorf("expected redaction marker and other attrs kept, got %q", out)
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("expected the discard logger to drop errors")
	}
}
