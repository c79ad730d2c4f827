package program

import (
	"fmt"

	"github.com/sergev/wormscript/parser"
	"github.com/sergev/wormscript/runtime"
)

// frame is an entry of the execution cursor.
type frame interface {
	framePos() parser.Position
}

// seqFrame walks the statements of a block.
type seqFrame struct {
	stmts []parser.Stmt
	next  int
	pos   parser.Position
}

func (f *seqFrame) framePos() parser.Position { return f.pos }

func (f *seqFrame) exhausted() bool { return f.next >= len(f.stmts) }

// loopFrame re-tests its condition each time it is on top of the stack.
type loopFrame struct {
	loop *parser.WhileStmt
}

func (f *loopFrame) framePos() parser.Position { return f.loop.Pos() }

func (p *Program) push(f frame) {
	p.frames = append(p.frames, f)
}

func (p *Program) pop() {
	p.frames = p.frames[:len(p.frames)-1]
}

func (p *Program) top() frame {
	return p.frames[len(p.frames)-1]
}

// NextExec runs p until one action has been performed or the program ends.
// Statements that do not act run without interruption. Once p has completed
// or failed, NextExec does nothing and returns nil. The returned error is
// the failure that stopped the program, wrapped in a *RuntimeError.
func (p *Program) NextExec() error {
	if p.state != Running {
		return nil
	}
	budget := p.stepLimit
	for {
		if len(p.frames) == 0 {
			p.finish(nil)
			return nil
		}
		if f, ok := p.top().(*seqFrame); ok && f.exhausted() {
			p.pop()
			continue
		}
		if budget == 0 {
			return p.fail(&RuntimeError{Pos: p.top().framePos(), Err: ErrStepLimit})
		}
		budget--

		switch f := p.top().(type) {
		case *loopFrame:
			cond, err := p.eval(f.loop.Cond)
			if err != nil {
				return p.fail(err)
			}
			if cond.Bool() {
				p.push(&seqFrame{stmts: f.loop.Body.Stmts, pos: f.loop.Body.Pos()})
			} else {
				p.pop()
			}
		case *seqFrame:
			stmt := f.stmts[f.next]
			f.next++
			acted, err := p.exec(stmt)
			if err != nil {
				return p.fail(err)
			}
			if acted {
				p.steps++
				p.unwind()
				if len(p.frames) == 0 {
					p.finish(nil)
				}
				return nil
			}
		}
	}
}

// unwind pops finished blocks without evaluating anything, so a program
// whose last statement was an action completes in the same call.
func (p *Program) unwind() {
	for len(p.frames) > 0 {
		f, ok := p.top().(*seqFrame)
		if !ok || !f.exhausted() {
			return
		}
		p.pop()
	}
}

func (p *Program) finish(err error) {
	p.frames = nil
	if err != nil {
		p.state = Failed
		p.err = err
		p.log.Debug("Program failed", "steps", p.steps, "err", err)
	} else {
		p.state = Completed
		p.log.Debug("Program completed", "steps", p.steps)
	}
	if fin, ok := p.handler.(runtime.Finisher); ok {
		fin.ProgramFinished(err)
	}
}

func (p *Program) fail(err error) error {
	p.finish(err)
	return err
}

// exec executes one statement and reports whether it performed an action.
func (p *Program) exec(stmt parser.Stmt) (bool, error) {
	switch s := stmt.(type) {
	case *parser.DeclStmt:
		p.env.Define(s.Name, s.Type)
		if s.Init == nil {
			return false, nil
		}
		return false, p.assign(s, s.Name, s.Init)
	case *parser.AssignStmt:
		return false, p.assign(s, s.Name, s.Expr)
	case *parser.BlockStmt:
		p.push(&seqFrame{stmts: s.Stmts, pos: s.Pos()})
		return false, nil
	case *parser.WhileStmt:
		p.push(&loopFrame{loop: s})
		return false, nil
	case *parser.IfStmt:
		cond, err := p.eval(s.Cond)
		if err != nil {
			return false, err
		}
		if cond.Bool() {
			p.push(&seqFrame{stmts: s.Then.Stmts, pos: s.Then.Pos()})
		} else if s.Else != nil {
			p.push(&seqFrame{stmts: s.Else.Stmts, pos: s.Else.Pos()})
		}
		return false, nil
	case *parser.PrintStmt:
		val, err := p.eval(s.Expr)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(p.out, val.String())
		return false, nil
	case *parser.ActionStmt:
		return true, p.act(s)
	default:
		return false, &RuntimeError{Pos: stmt.Pos(), Err: fmt.Errorf("unsupported statement %T", stmt)}
	}
}

func (p *Program) assign(node parser.Node, name string, expr parser.Expr) error {
	val, err := p.eval(expr)
	if err != nil {
		return err
	}
	if err := p.env.Set(name, val); err != nil {
		return runtimeError(node, "", err)
	}
	p.log.Trace("Assigned variable", "name", name, "value", val)
	return nil
}

func (p *Program) act(s *parser.ActionStmt) error {
	args, err := p.evalArgs(s.Args)
	if err != nil {
		return err
	}
	if p.handler == nil {
		return runtimeError(s, s.Name, errNoHandler)
	}
	p.log.Trace("Performing action", "action", s.Name, "args", len(args), "line", s.Pos().Line)
	if err := runtime.Invoke(p.handler, s.Name, args); err != nil {
		return runtimeError(s, s.Name, err)
	}
	return nil
}
