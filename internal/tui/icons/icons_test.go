// ABOUTME: Tests for icon set selection
// ABOUTME: Covers explicit modes and the fallback for unknown values

package icons

import "testing"

func TestSetMode(t *testing.T) {
	t.Cleanup(func() { SetMode(string(ModeUnicode)) })

	tests := []struct {
		mode string
		want string
	}{
		{"ascii", "[ok]"},
		{"UNICODE", "✓"},
		{"nerd", "\uf058"},
	}
	for _, tt := range tests {
		SetMode(tt.mode)
		if got := CheckOK.String(); got != tt.want {
			t.Errorf("mode %q: got %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestSetMode_UnknownDetects(t *testing.T) {
	t.Cleanup(func() { SetMode(string(ModeUnicode)) })
	t.Setenv("LC_ALL", "C")
	t.Setenv("LANG", "")

	SetMode("sparkly")
	if Current() != ModeASCII {
		t.Errorf("expected ASCII for a non-UTF-8 locale, got %s", Current())
	}
}
