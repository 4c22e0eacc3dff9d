package diagnostics

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of VC-generation failure.
type ErrorCode string

const (
	ErrV001 ErrorCode = "V001" // Null math type on an expression
	ErrV002 ErrorCode = "V002" // Arguments or result definition do not bind
	ErrV003 ErrorCode = "V003" // Missing clause
	ErrV004 ErrorCode = "V004" // Generic mismatch
	ErrV005 ErrorCode = "V005" // Unresolved or ambiguous operation
	ErrV006 ErrorCode = "V006" // Unsupported statement or expression
	ErrL001 ErrorCode = "L001" // Module file could not be decoded
)

var codeTitles = map[ErrorCode]string{
	ErrV001: "null math type",
	ErrV002: "binding failure",
	ErrV003: "missing clause",
	ErrV004: "generic mismatch",
	ErrV005: "unresolved operation",
	ErrV006: "unsupported construct",
	ErrL001: "load error",
}

// DiagnosticError is a fatal condition with its source location.
type DiagnosticError struct {
	Code     ErrorCode
	Location Location
	Message  string
	Err      error // Optional underlying cause
}

func (e *DiagnosticError) Error() string {
	title := codeTitles[e.Code]
	if title == "" {
		title = "error"
	}
	if e.Location.IsZero() {
		return fmt.Sprintf("%s [%s]: %s", title, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s [%s]: %s", e.Location, title, e.Code, e.Message)
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}

// NewError creates a diagnostic at loc.
func NewError(code ErrorCode, loc Location, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Location: loc, Message: msg}
}

// Errorf creates a diagnostic with a formatted message.
func Errorf(code ErrorCode, loc Location, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a diagnostic that keeps err as its cause.
func Wrap(code ErrorCode, loc Location, err error, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Location: loc, Message: msg + ": " + err.Error(), Err: err}
}

// CodeOf returns the code of the first DiagnosticError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var de *DiagnosticError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
