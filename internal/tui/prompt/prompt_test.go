// ABOUTME: Tests for interactive prompt helpers
// ABOUTME: Covers validators and non-terminal behavior

package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/markalston/safepulse-cli/internal/client"
)

func TestValidators(t *testing.T) {
	if err := required("badge number")("  "); err == nil || !strings.Contains(err.Error(), "badge number") {
		t.Errorf("expected required error, got %v", err)
	}
	if err := required("badge number")("B-1"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := validEmail("ada@police.gov.ng"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := validEmail("not-an-email"); err == nil {
		t.Error("expected invalid email error")
	}
	if err := minLength(8)("short"); err == nil {
		t.Error("expected length error")
	}
	pw := "s3cretpass"
	if err := matches(&pw, "mismatch")("other"); err == nil {
		t.Error("expected mismatch error")
	}
	if err := matches(&pw, "mismatch")("s3cretpass"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestLoginForm_OnlyAsksForMissingFields(t *testing.T) {
	if form := LoginForm(&client.Credentials{BadgeNumber: "B-1", Password: "x"}); form != nil {
		t.Error("expected no form when both values are given")
	}
	if form := LoginForm(&client.Credentials{BadgeNumber: "B-1"}); form == nil {
		t.Error("expected a form when the password is missing")
	}
}

func TestRun_NotInteractive(t *testing.T) {
	form := LoginForm(&client.Credentials{})
	err := Run(form, strings.NewReader(""), &bytes.Buffer{})
	if !errors.Is(err, ErrNotInteractive) {
		t.Errorf("expected ErrNotInteractive, got %v", err)
	}
	if err := Run(nil, strings.NewReader(""), &bytes.Buffer{}); err != nil {
		t.Errorf("expected nil form to be a no-op, got %v", err)
	}
}

func TestRegistrationForm_DefaultsRole(t *testing.T) {
	reg := &client.Registration{}
	if RegistrationForm(reg) == nil {
		t.Fatal("expected a form")
	}
	if reg.Role != "officer" {
		t.Errorf("expected default role officer, got %q", reg.Role)
	}
}
