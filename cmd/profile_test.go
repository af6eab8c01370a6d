// ABOUTME: Tests for the profile and officer directory commands
// ABOUTME: Verifies profile show/update and the officers listing

package cmd

import (
	"context"
	"io"
	"testing"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/fakebackend"
	"github.com/markalston/safepulse-cli/internal/session"
)

func TestProfileShow(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	var officer session.Officer
	runJSON(t, runProfileShow, &officer)
	if officer.BadgeNumber != fakebackend.DefaultBadge {
		t.Errorf("expected badge %s, got %s", fakebackend.DefaultBadge, officer.BadgeNumber)
	}
}

func TestProfileUpdate(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	code, output := run(func(ctx context.Context, w io.Writer) int {
		return runProfileUpdate(ctx, w, client.ProfileUpdate{Station: "Kawempe Police Station"})
	})
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, output)
	}
	assertContains(t, output, "Profile updated", "Kawempe Police Station")

	// whoami reads the stored officer, which the update refreshed.
	code, output = run(func(_ context.Context, w io.Writer) int { return runWhoami(w) })
	if code != exitOK {
		t.Fatalf("whoami: expected exit code 0, got %d", code)
	}
	assertContains(t, output, "Kawempe Police Station")
}

func TestProfileUpdate_NothingToUpdate(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	code, output := run(func(ctx context.Context, w io.Writer) int {
		return runProfileUpdate(ctx, w, client.ProfileUpdate{})
	})
	if code != exitUsage {
		t.Errorf("expected exit code 2, got %d", code)
	}
	assertContains(t, output, "nothing to update")
}

func TestOfficers(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	code, output := run(runOfficers)
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, output)
	}
	assertContains(t, output, fakebackend.DefaultBadge, "Grace Namutebi", "officer(s)")
}
