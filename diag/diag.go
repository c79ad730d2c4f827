// Package diag carries source diagnostics produced while turning script text
// into a runnable program.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Stage identifies the pipeline stage that produced a diagnostic.
type Stage int

const (
	StageLex Stage = iota
	StageSyntax
	StageType
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageSyntax:
		return "syntax"
	case StageType:
		return "type"
	default:
		return "unknown"
	}
}

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single message anchored at a source position.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Message  string
	Line     int
	Column   int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Line, d.Column, d.Severity, d.Message)
}

// List is an ordered collection of diagnostics. A List holding at least one
// error satisfies the error interface through Err.
type List []Diagnostic

// Errorf appends an error diagnostic.
func (l *List) Errorf(stage Stage, line, col int, format string, args ...interface{}) {
	*l = append(*l, Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// Warnf appends a warning diagnostic.
func (l *List) Warnf(stage Stage, line, col int, format string, args ...interface{}) {
	*l = append(*l, Diagnostic{
		Stage:    stage,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   col,
	})
}

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error diagnostics only.
func (l List) Errors() List {
	return l.filter(SeverityError)
}

// Warnings returns the warning diagnostics only.
func (l List) Warnings() List {
	return l.filter(SeverityWarning)
}

func (l List) filter(sev Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Sort orders diagnostics by position, keeping discovery order for ties.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Line != l[j].Line {
			return l[i].Line < l[j].Line
		}
		return l[i].Column < l[j].Column
	})
}

// Err returns the list as an error when it contains errors, nil otherwise.
func (l List) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].String()
	}
	var sb strings.Builder
	for i, d := range l {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(d.String())
	}
	return sb.String()
}
