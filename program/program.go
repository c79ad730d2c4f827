// Package program turns Worms source text into runnable programs and
// executes them one action at a time.
package program

import (
	"io"

	"github.com/sergev/wormscript/checker"
	"github.com/sergev/wormscript/diag"
	"github.com/sergev/wormscript/internal/log"
	"github.com/sergev/wormscript/lang"
	"github.com/sergev/wormscript/parser"
	"github.com/sergev/wormscript/runtime"
)

// DefaultStepLimit bounds the statements and loop tests a single NextExec
// call may evaluate.
const DefaultStepLimit = 1000000

// State is the execution state of a Program.
type State int

const (
	Running State = iota
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Script is a parsed and type checked program. It is immutable and may be
// bound to any number of handlers.
type Script struct {
	ast      *parser.Program
	info     *checker.Info
	warnings diag.List
}

// Compile parses and checks src. On failure the script is nil and the list
// holds at least one error; on success the list holds only warnings.
func Compile(src string) (*Script, diag.List) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, parser.AsDiagnostics(err)
	}
	info, diags := checker.Check(prog)
	if diags.HasErrors() {
		return nil, diags
	}
	return &Script{ast: prog, info: info, warnings: diags}, diags
}

// AST returns the syntax tree of the script.
func (s *Script) AST() *parser.Program { return s.ast }

// Info returns the type information of the script.
func (s *Script) Info() *checker.Info { return s.info }

// Warnings returns the warnings reported while checking the script.
func (s *Script) Warnings() diag.List { return s.warnings }

// Option configures a Program.
type Option func(*Program)

// WithStepLimit overrides DefaultStepLimit. Values below 1 are ignored.
func WithStepLimit(n int) Option {
	return func(p *Program) {
		if n > 0 {
			p.stepLimit = n
		}
	}
}

// WithOutput sets the destination of print statements.
func WithOutput(w io.Writer) Option {
	return func(p *Program) {
		if w != nil {
			p.out = w
		}
	}
}

// WithLogger sets the logger receiving execution traces.
func WithLogger(l log.Logger) Option {
	return func(p *Program) {
		if l != nil {
			p.log = l
		}
	}
}

// Program is a script bound to an action handler, together with its
// variables and execution cursor. A Program is not safe for concurrent use.
type Program struct {
	script  *Script
	handler runtime.Handler
	env     *lang.Env
	frames  []frame

	state State
	err   error
	steps int

	stepLimit int
	out       io.Writer
	log       log.Logger
}

// Bind creates a Program that executes s through h. Every declared variable
// starts at the default value of its type.
func (s *Script) Bind(h runtime.Handler, opts ...Option) *Program {
	p := &Program{
		script:    s,
		handler:   h,
		env:       lang.NewEnv(),
		stepLimit: DefaultStepLimit,
		out:       io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = log.New()
		p.log.SetHandler(log.DiscardHandler())
	}
	for _, decl := range s.info.Decls {
		p.env.Define(decl.Name, decl.Type)
	}
	p.frames = []frame{&seqFrame{stmts: s.ast.Body.Stmts, pos: s.ast.Body.Pos()}}
	return p
}

// IsValidProgram reports whether p was produced by a successful parse.
func (p *Program) IsValidProgram() bool {
	return p != nil && p.script != nil
}

// Script returns the compiled script p executes.
func (p *Program) Script() *Script { return p.script }

// State returns the execution state.
func (p *Program) State() State { return p.state }

// Done reports whether p reached a terminal state.
func (p *Program) Done() bool { return p.state != Running }

// Err returns the failure that stopped p, if any.
func (p *Program) Err() error { return p.err }

// Steps returns the number of actions performed so far.
func (p *Program) Steps() int { return p.steps }

// Warnings returns the checker warnings of the underlying script.
func (p *Program) Warnings() diag.List { return p.script.warnings }

// Lookup returns the current value of a declared variable.
func (p *Program) Lookup(name string) (lang.Value, bool) {
	b, ok := p.env.Lookup(name)
	if !ok {
		return lang.Value{}, false
	}
	return b.Value, true
}

// Variables lists the declared variable names in sorted order.
func (p *Program) Variables() []string {
	return p.env.Names()
}
