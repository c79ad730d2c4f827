package checker

import (
	"github.com/sergev/wormscript/lang"
	"github.com/sergev/wormscript/parser"
	"github.com/sergev/wormscript/runtime"
)

func (c *checker) checkBlock(block *parser.BlockStmt) {
	for _, stmt := range block.Stmts {
		c.checkStmt(stmt)
	}
}

func (c *checker) checkStmt(stmt parser.Stmt) {
	switch s := stmt.(type) {
	case *parser.DeclStmt:
		c.checkDecl(s)
	case *parser.AssignStmt:
		c.checkAssign(s)
	case *parser.BlockStmt:
		c.checkBlock(s)
	case *parser.WhileStmt:
		c.checkCondition("while", s.Cond)
		c.checkBlock(s.Body)
	case *parser.IfStmt:
		c.checkCondition("if", s.Cond)
		c.checkBlock(s.Then)
		if s.Else != nil {
			c.checkBlock(s.Else)
		}
	case *parser.PrintStmt:
		c.checkExpr(s.Expr)
	case *parser.ActionStmt:
		c.checkAction(s)
	default:
		c.errorf(stmt, "unsupported statement %T", stmt)
	}
}

func (c *checker) checkDecl(s *parser.DeclStmt) {
	if s.Init != nil {
		// The initializer cannot see the variable it initializes.
		t := c.checkExpr(s.Init)
		if t != lang.TypeInvalid && t != s.Type {
			c.errorf(s.Init, "cannot initialize %s variable %s with %s value", s.Type, s.Name, t)
		}
	}
	if prev, ok := c.declared[s.Name]; ok {
		pos := prev.decl.Pos()
		c.errorf(s, "variable %s redeclared (previous declaration at %d:%d)", s.Name, pos.Line, pos.Column)
		return
	}
	c.declared[s.Name] = &variable{decl: s}
	c.info.Decls = append(c.info.Decls, s)
}

func (c *checker) checkAssign(s *parser.AssignStmt) {
	t := c.checkExpr(s.Expr)
	v := c.resolve(s, s.Name)
	if v == nil || t == lang.TypeInvalid {
		return
	}
	if t != v.decl.Type {
		c.errorf(s, "cannot assign %s value to %s variable %s", t, v.decl.Type, s.Name)
	}
}

func (c *checker) checkCondition(keyword string, cond parser.Expr) {
	t := c.checkExpr(cond)
	if t != lang.TypeInvalid && t != lang.TypeBoolean {
		c.errorf(cond, "%s condition must be bool, got %s", keyword, t)
	}
}

func (c *checker) checkAction(s *parser.ActionStmt) {
	argTypes := c.checkExprs(s.Args)
	sig, ok := runtime.Lookup(s.Name)
	if !ok {
		c.errorf(s, "unknown action %s", s.Name)
		return
	}
	if sig.Kind != runtime.KindAction {
		c.errorf(s, "%s is a %s and cannot be used as a statement", s.Name, sig.Kind)
		return
	}
	c.checkArgs(s, sig, s.Args, argTypes)
}

// resolve finds the variable bound to name at node, reporting undeclared
// names and references that precede the declaration.
func (c *checker) resolve(node parser.Node, name string) *variable {
	if v, ok := c.declared[name]; ok {
		return v
	}
	if decl, ok := c.all[name]; ok {
		pos := decl.Pos()
		c.errorf(node, "variable %s used before its declaration at %d:%d", name, pos.Line, pos.Column)
		return nil
	}
	c.errorf(node, "undeclared variable %s", name)
	return nil
}
