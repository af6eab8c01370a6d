// ABOUTME: Configuration loader for the safepulse CLI
// ABOUTME: Loads settings from .env and environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvAPIURL      = "SAFEPULSE_API_URL"
	EnvSessionFile = "SAFEPULSE_SESSION_FILE"
	EnvTimeout     = "SAFEPULSE_TIMEOUT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvIcons       = "SAFEPULSE_ICONS"
)

// DefaultAPIURL is the local development backend.
const DefaultAPIURL = "http://localhost:8000"

type Config struct {
	// Backend
	APIURL  string
	Timeout time.Duration // per HTTP exchange, default 30s

	// Session
	SessionFile string // empty selects the XDG default path

	// Logging
	LogLevel  string // debug, info, warn, error (default: warn)
	LogFormat string // text, json (default: text)

	// Output
	Icons string // auto, nerd, unicode, ascii (default: auto)
}

// Load reads envFiles (default ".env") into the environment without
// overriding variables that are already set, then builds the config.
// Missing env files are ignored.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		APIURL:      strings.TrimRight(getEnv(EnvAPIURL, DefaultAPIURL), "/"),
		SessionFile: os.Getenv(EnvSessionFile),
		LogLevel:    getEnv(EnvLogLevel, "warn"),
		LogFormat:   getEnv(EnvLogFormat, "text"),
		Icons:       getEnv(EnvIcons, "auto"),
	}

	timeout := getEnvInt(EnvTimeout, 30)
	if timeout < 1 || timeout > 600 {
		return nil, fmt.Errorf("%s must be between 1 and 600, got %d", EnvTimeout, timeout)
	}
	cfg.Timeout = time.Duration(timeout) * time.Second

	if !strings.Contains(cfg.APIURL, "://") {
		return nil, fmt.Errorf("%s must include a scheme, got %q", EnvAPIURL, cfg.APIURL)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
