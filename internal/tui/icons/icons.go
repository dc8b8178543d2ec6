// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// nerdFontTerminals commonly ship with Nerd Fonts installed
var nerdFontTerminals = []string{
	"iTerm.app",
	"alacritty",
	"WezTerm",
	"kitty",
	"ghostty",
}

func detectNerdFonts() bool {
	if env := os.Getenv("METADASH_NERD_FONTS"); env != "" {
		return env == "1" || strings.EqualFold(env, "true")
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")
	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon has a Nerd Font glyph and a plain Unicode fallback
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	App    = Icon{"󰋼", "◈"}      // nf-md-information
	User   = Icon{"\uf007", "☺"} // nf-fa-user
	Admin  = Icon{"󰒃", "⛊"}      // nf-md-shield_check
	Lock   = Icon{"\uf023", "⚿"} // nf-fa-lock
	Key    = Icon{"\uf084", "⚷"} // nf-fa-key
	Health = Icon{"󰓅", "♥"}      // nf-md-gauge
	CPU    = Icon{"\uf4bc", "●"} // nf-oct-cpu
	Memory = Icon{"󰍛", "◆"}      // nf-md-memory
	Build  = Icon{"\uf487", "⚒"} // nf-oct-package

	CheckOK  = Icon{"\uf058", "✓"} // nf-fa-check_circle
	Warning  = Icon{"\uf071", "⚠"} // nf-fa-warning
	Critical = Icon{"\uf057", "✗"} // nf-fa-times_circle
)
