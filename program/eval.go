package program

import (
	"fmt"

	"github.com/sergev/wormscript/lang"
	"github.com/sergev/wormscript/parser"
	"github.com/sergev/wormscript/runtime"
)

func (p *Program) evalArgs(exprs []parser.Expr) ([]lang.Value, error) {
	args := make([]lang.Value, len(exprs))
	for i, e := range exprs {
		v, err := p.eval(e)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (p *Program) eval(expr parser.Expr) (lang.Value, error) {
	switch e := expr.(type) {
	case *parser.NumberExpr:
		return lang.NumberValue(e.Value), nil
	case *parser.BoolExpr:
		return lang.BoolValue(e.Value), nil
	case *parser.NullExpr:
		return lang.Null, nil
	case *parser.SelfExpr:
		if p.handler == nil {
			return lang.Value{}, runtimeError(e, "self", errNoHandler)
		}
		return lang.EntityValue(p.handler.Self()), nil
	case *parser.IdentifierExpr:
		v, err := p.env.Get(e.Name)
		if err != nil {
			return lang.Value{}, runtimeError(e, "", err)
		}
		return v, nil
	case *parser.UnaryExpr:
		return p.evalUnary(e)
	case *parser.BinaryExpr:
		return p.evalBinary(e)
	case *parser.CallExpr:
		args, err := p.evalArgs(e.Args)
		if err != nil {
			return lang.Value{}, err
		}
		v, err := runtime.Call(p.handler, e.Name, args)
		if err != nil {
			return lang.Value{}, runtimeError(e, e.Name, err)
		}
		return v, nil
	default:
		return lang.Value{}, &RuntimeError{Pos: expr.Pos(), Err: fmt.Errorf("unsupported expression %T", expr)}
	}
}

func (p *Program) evalUnary(e *parser.UnaryExpr) (lang.Value, error) {
	v, err := p.eval(e.Expr)
	if err != nil {
		return lang.Value{}, err
	}
	switch e.Op {
	case parser.OpNeg:
		return lang.NumberValue(-v.Number()), nil
	case parser.OpNot:
		return lang.BoolValue(!v.Bool()), nil
	default:
		return lang.Value{}, runtimeError(e, "", fmt.Errorf("unsupported unary operator %s", e.Op))
	}
}

func (p *Program) evalBinary(e *parser.BinaryExpr) (lang.Value, error) {
	left, err := p.eval(e.Left)
	if err != nil {
		return lang.Value{}, err
	}
	// && and || do not evaluate their right operand once the result is known.
	switch e.Op {
	case parser.OpAnd:
		if !left.Bool() {
			return left, nil
		}
		return p.evalBool(e.Right)
	case parser.OpOr:
		if left.Bool() {
			return left, nil
		}
		return p.evalBool(e.Right)
	}

	right, err := p.eval(e.Right)
	if err != nil {
		return lang.Value{}, err
	}
	a, b := left.Number(), right.Number()
	switch e.Op {
	case parser.OpAdd:
		return lang.NumberValue(a + b), nil
	case parser.OpSub:
		return lang.NumberValue(a - b), nil
	case parser.OpMul:
		return lang.NumberValue(a * b), nil
	case parser.OpDiv:
		return lang.NumberValue(a / b), nil
	case parser.OpLess:
		return lang.BoolValue(a < b), nil
	case parser.OpLessEqual:
		return lang.BoolValue(a <= b), nil
	case parser.OpGreater:
		return lang.BoolValue(a > b), nil
	case parser.OpGreaterEqual:
		return lang.BoolValue(a >= b), nil
	case parser.OpEqual:
		return lang.BoolValue(left.Equal(right)), nil
	case parser.OpNotEqual:
		return lang.BoolValue(!left.Equal(right)), nil
	default:
		return lang.Value{}, runtimeError(e, "", fmt.Errorf("unsupported binary operator %s", e.Op))
	}
}

func (p *Program) evalBool(expr parser.Expr) (lang.Value, error) {
	v, err := p.eval(expr)
	if err != nil {
		return lang.Value{}, err
	}
	return lang.BoolValue(v.Bool()), nil
}
