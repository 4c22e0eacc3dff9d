package diagnostics

import "fmt"

// Location is a position in a source file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0 && l.Column == 0
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// LocationDetail records where a synthesized expression came from and why,
// e.g. "Base Case of the Invariant of While Statement".
type LocationDetail struct {
	Source      Location // The clause or statement it was derived from
	Destination Location // Where the expression now lives
	Message     string
}

func (d *LocationDetail) String() string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", d.Source, d.Message)
}
