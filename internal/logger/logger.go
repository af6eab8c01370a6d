// ABOUTME: Structured logging for the safepulse CLI and its dev server
// ABOUTME: slog handler selection by level and format, with credential redaction

package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Redacted replaces the value of any attribute that can carry a credential.
const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]bool{
	"access":        true,
	"access_token":  true,
	"refresh":       true,
	"refresh_token": true,
	"authorization": true,
	"password":      true,
	"old_password":  true,
	"new_password":  true,
}

// Init installs the default slog logger writing to w and returns it.
// level: debug, info, warn, error (default: warn)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: redact,
	}

	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, Redacted)
	}
	return a
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}
