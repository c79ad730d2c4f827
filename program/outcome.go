package program

import (
	"github.com/sergev/wormscript/diag"
	"github.com/sergev/wormscript/runtime"
)

// Outcome is the result of ParseProgram: either a runnable Program or the
// diagnostics explaining why none could be built.
type Outcome struct {
	program *Program
	diags   diag.List
}

// ParseProgram compiles src and binds it to h. Lexical and syntax errors
// produce a failure with a single diagnostic; type errors produce a failure
// listing every error found.
func ParseProgram(src string, h runtime.Handler, opts ...Option) Outcome {
	script, diags := Compile(src)
	if script == nil {
		return Outcome{diags: diags}
	}
	return Outcome{program: script.Bind(h, opts...), diags: diags}
}

// IsSuccess reports whether a Program was produced.
func (o Outcome) IsSuccess() bool { return o.program != nil }

// Program returns the program of a successful outcome, or nil.
func (o Outcome) Program() *Program { return o.program }

// Diagnostics returns the errors of a failed outcome, or the warnings of a
// successful one.
func (o Outcome) Diagnostics() diag.List { return o.diags }

// Err returns the diagnostics as an error when the outcome is a failure.
func (o Outcome) Err() error {
	if o.program != nil {
		return nil
	}
	return o.diags.Err()
}
