// ABOUTME: Icon sets for terminal output: Nerd Font glyphs, Unicode and plain ASCII
// ABOUTME: The set is chosen once from configuration, or detected from the terminal

package icons

import (
	"os"
	"strings"
	"sync"
)

// Mode selects an icon set.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModeNerd    Mode = "nerd"
	ModeUnicode Mode = "unicode"
	ModeASCII   Mode = "ascii"
)

var (
	mu      sync.RWMutex
	current = ModeAuto
	once    sync.Once
)

// SetMode selects the icon set. Unknown values fall back to auto detection.
func SetMode(m string) {
	mode := Mode(strings.ToLower(strings.TrimSpace(m)))
	switch mode {
	case ModeNerd, ModeUnicode, ModeASCII:
	default:
		mode = detect()
	}
	mu.Lock()
	current = mode
	mu.Unlock()
}

// Current returns the active icon set, detecting it on first use.
func Current() Mode {
	mu.RLock()
	m := current
	mu.RUnlock()
	if m != ModeAuto {
		return m
	}
	once.Do(func() { SetMode(string(ModeAuto)) })
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// detect picks Nerd Font glyphs on terminals that commonly ship them and
// ASCII when the locale is not UTF-8.
func detect() Mode {
	lang := os.Getenv("LC_ALL") + os.Getenv("LANG")
	if lang != "" && !strings.Contains(strings.ToUpper(lang), "UTF") {
		return ModeASCII
	}
	termProgram := os.Getenv("TERM_PROGRAM")
	for _, t := range []string{"WezTerm", "ghostty", "kitty"} {
		if strings.Contains(termProgram, t) || strings.Contains(os.Getenv("TERM"), strings.ToLower(t)) {
			return ModeNerd
		}
	}
	return ModeUnicode
}

// Icon is one glyph in each icon set.
type Icon struct {
	Nerd    string
	Unicode string
	ASCII   string
}

func (i Icon) String() string {
	switch Current() {
	case ModeNerd:
		return i.Nerd
	case ModeASCII:
		return i.ASCII
	}
	return i.Unicode
}

var (
	CheckOK  = Icon{"\uf058", "✓", "[ok]"}
	Warning  = Icon{"\uf071", "⚠", "[!]"}
	Critical = Icon{"\uf057", "✗", "[x]"}
	Info     = Icon{"\uf05a", "ℹ", "[i]"}

	TrendUp   = Icon{"\U000f0535", "↗", "^"}
	TrendDown = Icon{"\U000f0533", "↘", "v"}
	Chart     = Icon{"\U000f012a", "▁", "#"}

	Shield  = Icon{"\U000f0565", "⛊", "*"}
	Officer = Icon{"\U000f0004", "☺", "@"}
	Case    = Icon{"\U000f0219", "▤", "="}
	Alert   = Icon{"\U000f0026", "!", "!"}
	MapPin  = Icon{"\U000f034e", "◉", "o"}
	Report  = Icon{"\U000f0226", "▦", "%"}
	Brain   = Icon{"\U000f09d1", "✦", "+"}
)
