// Package diag holds the diagnostic record produced by every front-end phase and
// the concurrent-safe sink that accumulates them.
package diag

import (
	"fmt"

	"csresolve/pkg/token"
)

// Severity represents diagnostic severity level.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Diagnostic is one compiler-grade error or warning pointing at a source token.
type Diagnostic struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Position int      `json:"position"`
}

// Errorf creates an error diagnostic at pos.
func Errorf(code string, pos token.Position, format string, args ...any) *Diagnostic {
	return newDiagnostic(SeverityError, code, pos, fmt.Sprintf(format, args...))
}

// Warningf creates a warning diagnostic at pos.
func Warningf(code string, pos token.Position, format string, args ...any) *Diagnostic {
	return newDiagnostic(SeverityWarning, code, pos, fmt.Sprintf(format, args...))
}

func newDiagnostic(severity Severity, code string, pos token.Position, message string) *Diagnostic {
	return &Diagnostic{
		Code:     code,
		Severity: severity,
		Message:  message,
		File:     pos.File,
		Line:     pos.Line,
		Column:   pos.Column,
		Position: pos.Offset,
	}
}

// Pos returns the diagnostic location as a token position.
func (d *Diagnostic) Pos() token.Position {
	return token.Position{File: d.File, Line: d.Line, Column: d.Column, Offset: d.Position}
}

// Error returns a compact human-readable diagnostic string.
func (d *Diagnostic) Error() string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%s(%d,%d): %s %s: %s", d.File, d.Line, d.Column, d.Severity, d.Code, d.Message)
}

// Sink receives diagnostics from the lexer, parser, declaration builder and resolver.
type Sink interface {
	Report(d *Diagnostic)
}
