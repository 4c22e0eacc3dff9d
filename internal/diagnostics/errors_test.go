package diagnostics

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDiagnosticErrorFormatting(t *testing.T) {
	loc := Location{File: "Stack_Proc.vc.yaml", Line: 12, Column: 5}
	err := NewError(ErrV003, loc, "while statement has no maintaining clause")

	msg := err.Error()
	if !strings.HasPrefix(msg, "Stack_Proc.vc.yaml:12:5") {
		t.Errorf("expected message to start with location, got %q", msg)
	}
	if !strings.Contains(msg, "[V003]") {
		t.Errorf("expected message to contain code, got %q", msg)
	}
}

func TestCodeOfThroughWrapping(t *testing.T) {
	base := Errorf(ErrV004, Location{}, "cannot bind %s to %s", "Entry", "Z")
	wrapped := fmt.Errorf("procedure Push: %w", base)

	if got := CodeOf(wrapped); got != ErrV004 {
		t.Errorf("CodeOf() = %q, want %q", got, ErrV004)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := Wrap(ErrL001, Location{File: "m.vc.yaml"}, cause, "decoding module")
	if !errors.Is(err, cause) {
		t.Errorf("expected wrapped error to match its cause")
	}
}
