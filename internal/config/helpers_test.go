// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"testing"
)

var configVars = []string{EnvAPIURL, EnvSessionFile, EnvTimeout, EnvLogLevel, EnvLogFormat, EnvIcons}

// withCleanEnv unsets every variable Load reads, sets extra, and restores
// the original values when the test ends.
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    withCleanEnv(t, map[string]string{"SAFEPULSE_TIMEOUT": "5"})
//	}
func withCleanEnv(t *testing.T, extra map[string]string) {
	t.Helper()

	for _, key := range configVars {
		// t.Setenv restores the original value on cleanup.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	for key, value := range extra {
		t.Setenv(key, value)
	}
}
