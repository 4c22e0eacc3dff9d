package prettyprinter

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// Colour modes accepted in the configuration.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// UseColor decides whether output written to f gets ANSI colours. In auto
// mode colour needs a terminal, no NO_COLOR variable and a TERM other than
// "dumb".
func UseColor(mode string, f *os.File) (bool, error) {
	switch mode {
	case ColorAlways:
		return true, nil
	case ColorNever:
		return false, nil
	case ColorAuto, "":
	default:
		return false, fmt.Errorf("unknown color mode %q", mode)
	}

	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false, nil
	}
	if f == nil || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		return false, nil
	}
	return os.Getenv("TERM") != "dumb", nil
}
