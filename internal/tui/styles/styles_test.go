package styles

import (
	"strings"
	"testing"

	"github.com/markalston/safepulse-cli/internal/tui/icons"
)

func TestField_EmptyValueIsDash(t *testing.T) {
	got := Field("Station", "")
	if !strings.HasPrefix(got, "Station") || !strings.HasSuffix(got, "-") {
		t.Errorf("unexpected field %q", got)
	}
}

func TestHeading(t *testing.T) {
	icons.SetMode("ascii")
	t.Cleanup(func() { icons.SetMode("unicode") })

	if got := Heading(icons.Case, "UPF-CASE-00001"); !strings.Contains(got, "= UPF-CASE-00001") {
		t.Errorf("unexpected heading %q", got)
	}
}
