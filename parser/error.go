package parser

import (
	"errors"
	"fmt"

	"github.com/sergev/wormscript/diag"
)

// Error represents a lexer or parser error with its source position.
type Error struct {
	Err        error
	Stage      diag.Stage
	Pos        Position
	Incomplete bool
}

func (e *Error) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return fmt.Sprintf("%d:%d: %v", e.Pos.Line, e.Pos.Column, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Diagnostic converts the error into a single diagnostic entry.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    e.Stage,
		Severity: diag.SeverityError,
		Message:  e.Err.Error(),
		Line:     e.Pos.Line,
		Column:   e.Pos.Column,
	}
}

func newLexError(pos Position, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Stage: diag.StageLex, Pos: pos}
}

func newIncompleteLexError(pos Position, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Err: err, Stage: diag.StageLex, Pos: pos, Incomplete: true}
}

func newSyntaxError(pos Position, incomplete bool, err error) error {
	return &Error{Err: err, Stage: diag.StageSyntax, Pos: pos, Incomplete: incomplete}
}

// IsIncomplete reports whether the supplied error represents incomplete input.
func IsIncomplete(err error) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Incomplete
	}
	return false
}

// AsDiagnostics converts a parse error into a diagnostic list. Errors that
// did not originate in this package are reported at position 0:0.
func AsDiagnostics(err error) diag.List {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return diag.List{perr.Diagnostic()}
	}
	return diag.List{{
		Stage:    diag.StageSyntax,
		Severity: diag.SeverityError,
		Message:  err.Error(),
	}}
}
