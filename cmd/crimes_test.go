// ABOUTME: Tests for the crime report commands
// ABOUTME: Runs list, CRUD, evidence and bulk upload commands against the fake backend

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/markalston/safepulse-cli/internal/client"
)

func newCrime() client.Crime {
	return client.Crime{
		Title:        "Motorcycle stolen outside church",
		Category:     "theft",
		Severity:     "medium",
		Description:  "Boda boda taken during Sunday service",
		Location:     "Rubaga Cathedral",
		District:     "Kampala",
		DateOccurred: "2026-10-18 10:30",
	}
}

func TestCrimesList_Human(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	code, output := run(func(ctx context.Context, w io.Writer) int {
		return runCrimesList(ctx, w, client.CrimeFilter{})
	})
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, output)
	}
	assertContains(t, output, "UPF-CASE-00001", "Armed robbery at mobile money kiosk", "HIGH", "Page 1, 12 of 12 report(s)")
}

func TestCrimesList_Filters(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	tests := []struct {
		name   string
		filter client.CrimeFilter
		want   int
	}{
		{"all", client.CrimeFilter{}, 12},
		{"district", client.CrimeFilter{District: "jinja"}, 2},
		{"status", client.CrimeFilter{Status: "solved"}, 3},
		{"category", client.CrimeFilter{Category: "homicide"}, 1},
		{"search", client.CrimeFilter{Search: "mobile money"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page client.Page[client.Crime]
			runJSON(t, func(ctx context.Context, w io.Writer) int {
				return runCrimesList(ctx, w, tt.filter)
			}, &page)
			if page.Count != tt.want {
				t.Errorf("expected %d crimes, got %d", tt.want, page.Count)
			}
		})
	}
}

func TestCrimesList_Empty(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	code, output := run(func(ctx context.Context, w io.Writer) int {
		return runCrimesList(ctx, w, client.CrimeFilter{})
	})
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	assertContains(t, output, "No crime reports found.")
}

func TestCrimeGet(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	code, output := run(func(ctx context.Context, w io.Writer) int { return runCrimeGet(ctx, w, "2") })
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, output)
	}
	assertContains(t, output, "UPF-CASE-00002", "Body found near railway line", "CRITICAL", "Under Investigation", "Nakawa")
}

func TestCrimeGet_InvalidAndMissing(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	code, output := run(func(ctx context.Context, w io.Writer) int { return runCrimeGet(ctx, w, "abc") })
	if code != exitUsage {
		t.Errorf("expected exit code 2 for a bad ID, got %d", code)
	}
	assertContains(t, output, "invalid crime ID")

	code, _ = run(func(ctx context.Context, w io.Writer) int { return runCrimeGet(ctx, w, "999") })
	if code != exitRejected {
		t.Errorf("expected exit code 1 for an unknown crime, got %d", code)
	}
}

func TestCrimeCreate_ThenGet(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	var created client.Crime
	runJSON(t, func(ctx context.Context, w io.Writer) int {
		return runCrimeCreate(ctx, w, newCrime())
	}, &created)
	if created.CaseNumber == "" || created.ID == 0 {
		t.Fatalf("expected a case number and ID, got %+v", created)
	}
	if created.Status != "reported" {
		t.Errorf("expected new crime to be reported, got %q", created.Status)
	}

	code, output := run(func(ctx context.Context, w io.Writer) int {
		return runCrimeGet(ctx, w, strconv.Itoa(created.ID))
	})
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	assertContains(t, output, created.CaseNumber, "Motorcycle stolen outside church", "Rubaga Cathedral")
}

func TestCrimeCreate_Validation(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	missing := newCrime()
	missing.Location = ""
	code, output := run(func(ctx context.Context, w io.Writer) int { return runCrimeCreate(ctx, w, missing) })
	if code != exitUsage {
		t.Errorf("expected exit code 2 for missing flags, got %d", code)
	}
	assertContains(t, output, "--location")

	invalid := newCrime()
	invalid.Severity = "extreme"
	code, output = run(func(ctx context.Context, w io.Writer) int { return runCrimeCreate(ctx, w, invalid) })
	if code != exitRejected {
		t.Errorf("expected exit code 1 for a rejected severity, got %d", code)
	}
	assertContains(t, output, "severity")
}

func TestCrimeUpdate(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	var updated client.Crime
	runJSON(t, func(ctx context.Context, w io.Writer) int {
		return runCrimeUpdate(ctx, w, "1", client.Crime{Status: "solved"})
	}, &updated)
	if updated.Status != "solved" {
		t.Errorf("expected status solved, got %q", updated.Status)
	}
	if updated.Title != "Armed robbery at mobile money kiosk" {
		t.Errorf("expected title to be unchanged, got %q", updated.Title)
	}

	code, _ := run(func(ctx context.Context, w io.Writer) int {
		return runCrimeUpdate(ctx, w, "1", client.Crime{})
	})
	if code != exitUsage {
		t.Errorf("expected exit code 2 for an empty update, got %d", code)
	}
}

func TestCrimeDelete(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	code, output := run(func(ctx context.Context, w io.Writer) int { return runCrimeDelete(ctx, w, "3", false) })
	if code != exitUsage {
		t.Errorf("expected exit code 2 without --yes, got %d", code)
	}
	assertContains(t, output, "--yes")

	code, output = run(func(ctx context.Context, w io.Writer) int { return runCrimeDelete(ctx, w, "3", true) })
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, output)
	}
	assertContains(t, output, "Deleted crime report 3")

	code, _ = run(func(ctx context.Context, w io.Writer) int { return runCrimeGet(ctx, w, "3") })
	if code != exitRejected {
		t.Errorf("expected deleted crime to be gone, got exit code %d", code)
	}
}

func TestCrimesMineAndStats(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	var mine client.Page[client.Crime]
	runJSON(t, runCrimesMine, &mine)
	if mine.Count != 12 {
		t.Errorf("expected the admin to own all 12 sample crimes, got %d", mine.Count)
	}

	code, output := run(runCrimeStats)
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d: %s", code, output)
	}
	assertContains(t, output, "Crime statistics: 12 report(s)", "By category", "By severity", "By status", "Theft")
}

func TestSuspectsAndWitnesses(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	var suspect client.Suspect
	runJSON(t, func(ctx context.Context, w io.Writer) int {
		return runSuspectAdd(ctx, w, "1", client.Suspect{Name: "John Mukasa", Alias: "JM", AgeEstimate: 28, Gender: "male"})
	}, &suspect)
	if suspect.ID == 0 || suspect.Name != "John Mukasa" {
		t.Fatalf("unexpected suspect: %+v", suspect)
	}

	var witness client.Witness
	runJSON(t, func(ctx context.Context, w io.Writer) int {
		return runWitnessAdd(ctx, w, "1", client.Witness{Name: "Sarah Nambi", Statement: "Saw two men on a motorcycle"})
	}, &witness)
	if witness.ID == 0 {
		t.Fatalf("unexpected witness: %+v", witness)
	}

	code, output := run(func(ctx context.Context, w io.Writer) int { return runCrimeGet(ctx, w, "1") })
	if code != exitOK {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	assertContains(t, output, "John Mukasa", "Sarah Nambi")

	sid, wid := strconv.Itoa(suspect.ID), strconv.Itoa(witness.ID)
	if code, output := run(func(ctx context.Context, w io.Writer) int { return runSuspectRemove(ctx, w, "1", sid) }); code != exitOK {
		t.Errorf("remove suspect: exit code %d: %s", code, output)
	}
	if code, output := run(func(ctx context.Context, w io.Writer) int { return runWitnessRemove(ctx, w, "1", wid) }); code != exitOK {
		t.Errorf("remove witness: exit code %d: %s", code, output)
	}

	var crime client.Crime
	runJSON(t, func(ctx context.Context, w io.Writer) int { return runCrimeGet(ctx, w, "1") }, &crime)
	if len(crime.Suspects) != 0 || len(crime.Witnesses) != 0 {
		t.Errorf("expected suspects and witnesses removed, got %d and %d", len(crime.Suspects), len(crime.Witnesses))
	}
}

func TestWitnessAdd_RequiresName(t *testing.T) {
	env := newTestEnv(t, true)
	env.login(t)

	code, _ := run(func(ctx context.Context, w io.Writer) int {
		return runWitnessAdd(ctx, w, "1", client.Witness{IsAnonymous: true})
	})
	if code != exitUsage {
		t.Errorf("expected exit code 2, got %d", code)
	}
}

func TestTemplateThenUpload(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	path := filepath.Join(t.TempDir(), "crimes.csv")
	code, output := run(func(ctx context.Context, w io.Writer) int { return runCrimesTemplate(ctx, w, path) })
	if code != exitOK {
		t.Fatalf("template: expected exit code 0, got %d: %s", code, output)
	}
	assertContains(t, output, "Saved "+path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected a non-empty template")
	}

	var res client.UploadResult
	runJSON(t, func(ctx context.Context, w io.Writer) int { return runCrimesUpload(ctx, w, path) }, &res)
	if res.Summary.Created != 2 || len(res.CreatedCases) != 2 {
		t.Fatalf("expected 2 created crimes, got %+v", res.Summary)
	}

	var page client.Page[client.Crime]
	runJSON(t, func(ctx context.Context, w io.Writer) int {
		return runCrimesList(ctx, w, client.CrimeFilter{})
	}, &page)
	if page.Count != 2 {
		t.Errorf("expected 2 crimes after upload, got %d", page.Count)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	env := newTestEnv(t, false)
	env.login(t)

	code, _ := run(func(ctx context.Context, w io.Writer) int {
		return runCrimesUpload(ctx, w, filepath.Join(t.TempDir(), "nope.csv"))
	})
	if code != exitUsage {
		t.Errorf("expected exit code 2, got %d", code)
	}
}
