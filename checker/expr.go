package checker

import (
	"github.com/sergev/wormscript/lang"
	"github.com/sergev/wormscript/parser"
	"github.com/sergev/wormscript/runtime"
)

func (c *checker) checkExprs(exprs []parser.Expr) []lang.Type {
	types := make([]lang.Type, len(exprs))
	for i, e := range exprs {
		types[i] = c.checkExpr(e)
	}
	return types
}

func (c *checker) checkExpr(e parser.Expr) lang.Type {
	t := c.inferExpr(e)
	c.info.Types[e] = t
	return t
}

func (c *checker) inferExpr(e parser.Expr) lang.Type {
	switch e := e.(type) {
	case *parser.NumberExpr:
		return lang.TypeNumber
	case *parser.BoolExpr:
		return lang.TypeBoolean
	case *parser.NullExpr, *parser.SelfExpr:
		return lang.TypeEntity
	case *parser.IdentifierExpr:
		v := c.resolve(e, e.Name)
		if v == nil {
			return lang.TypeInvalid
		}
		v.used = true
		return v.decl.Type
	case *parser.UnaryExpr:
		return c.inferUnary(e)
	case *parser.BinaryExpr:
		return c.inferBinary(e)
	case *parser.CallExpr:
		return c.inferCall(e)
	default:
		c.errorf(e, "unsupported expression %T", e)
		return lang.TypeInvalid
	}
}

func (c *checker) inferUnary(e *parser.UnaryExpr) lang.Type {
	operand := c.checkExpr(e.Expr)
	want := lang.TypeNumber
	if e.Op == parser.OpNot {
		want = lang.TypeBoolean
	}
	if operand == lang.TypeInvalid {
		return want
	}
	if operand != want {
		c.errorf(e, "operator %s requires a %s operand, got %s", e.Op, want, operand)
	}
	return want
}

func (c *checker) inferBinary(e *parser.BinaryExpr) lang.Type {
	left := c.checkExpr(e.Left)
	right := c.checkExpr(e.Right)

	var operand, result lang.Type
	switch {
	case e.Op.IsArithmetic():
		operand, result = lang.TypeNumber, lang.TypeNumber
	case e.Op.IsRelational():
		operand, result = lang.TypeNumber, lang.TypeBoolean
	case e.Op.IsLogical():
		operand, result = lang.TypeBoolean, lang.TypeBoolean
	case e.Op.IsEquality():
		if left != lang.TypeInvalid && right != lang.TypeInvalid && left != right {
			c.errorf(e, "mismatched types %s and %s in %s comparison", left, right, e.Op)
		}
		return lang.TypeBoolean
	default:
		c.errorf(e, "unsupported operator %s", e.Op)
		return lang.TypeInvalid
	}

	if left == lang.TypeInvalid || right == lang.TypeInvalid {
		return result
	}
	if left != operand || right != operand {
		c.errorf(e, "operator %s requires %s operands, got %s and %s", e.Op, operand, left, right)
	}
	return result
}

func (c *checker) inferCall(e *parser.CallExpr) lang.Type {
	argTypes := c.checkExprs(e.Args)
	sig, ok := runtime.Lookup(e.Name)
	if !ok {
		c.errorf(e, "unknown function %s", e.Name)
		return lang.TypeInvalid
	}
	if sig.Kind == runtime.KindAction {
		c.errorf(e, "%s is an action and cannot be used in an expression", e.Name)
		return lang.TypeInvalid
	}
	c.checkArgs(e, sig, e.Args, argTypes)
	return sig.Result
}

func (c *checker) checkArgs(node parser.Node, sig *runtime.Signature, args []parser.Expr, types []lang.Type) {
	if len(args) != len(sig.Params) {
		c.errorf(node, "%s expects %d arguments, got %d", sig.Name, len(sig.Params), len(args))
		return
	}
	for i, want := range sig.Params {
		if types[i] != lang.TypeInvalid && types[i] != want {
			c.errorf(args[i], "argument %d of %s must be %s, got %s", i+1, sig.Name, want, types[i])
		}
	}
}
