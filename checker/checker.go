// Package checker performs static type checking of parsed programs.
package checker

import (
	"github.com/sergev/wormscript/diag"
	"github.com/sergev/wormscript/lang"
	"github.com/sergev/wormscript/parser"
)

// Info holds the results of type checking for use by the interpreter.
type Info struct {
	// Types records the inferred type of every checked expression.
	Types map[parser.Expr]lang.Type
	// Decls lists the variable declarations in source order.
	Decls []*parser.DeclStmt
}

// TypeOf returns the recorded type of e, or lang.TypeInvalid.
func (info *Info) TypeOf(e parser.Expr) lang.Type {
	if info == nil {
		return lang.TypeInvalid
	}
	return info.Types[e]
}

type variable struct {
	decl *parser.DeclStmt
	used bool
}

type checker struct {
	info  *Info
	diags diag.List

	// all holds every declaration in the program, visible or not yet;
	// declared holds those already passed in source order.
	all      map[string]*parser.DeclStmt
	declared map[string]*variable
}

// Check type checks prog. All errors are collected in one traversal; the
// returned list is sorted by position and may also contain warnings. The
// Info is populated even when errors are reported.
func Check(prog *parser.Program) (*Info, diag.List) {
	c := &checker{
		info: &Info{
			Types: make(map[parser.Expr]lang.Type),
		},
		all:      make(map[string]*parser.DeclStmt),
		declared: make(map[string]*variable),
	}
	if prog == nil || prog.Body == nil {
		return c.info, nil
	}
	c.collectDecls(prog.Body)
	c.checkBlock(prog.Body)
	c.reportUnused()
	c.diags.Sort()
	return c.info, c.diags
}

func (c *checker) errorf(node parser.Node, format string, args ...interface{}) {
	pos := node.Pos()
	c.diags.Errorf(diag.StageType, pos.Line, pos.Column, format, args...)
}

func (c *checker) warnf(node parser.Node, format string, args ...interface{}) {
	pos := node.Pos()
	c.diags.Warnf(diag.StageType, pos.Line, pos.Column, format, args...)
}

func (c *checker) collectDecls(block *parser.BlockStmt) {
	for _, stmt := range block.Stmts {
		switch s := stmt.(type) {
		case *parser.DeclStmt:
			if _, ok := c.all[s.Name]; !ok {
				c.all[s.Name] = s
			}
		case *parser.BlockStmt:
			c.collectDecls(s)
		case *parser.WhileStmt:
			c.collectDecls(s.Body)
		case *parser.IfStmt:
			c.collectDecls(s.Then)
			if s.Else != nil {
				c.collectDecls(s.Else)
			}
		}
	}
}

func (c *checker) reportUnused() {
	for _, decl := range c.info.Decls {
		if v := c.declared[decl.Name]; v != nil && v.decl == decl && !v.used {
			c.warnf(decl, "variable %s declared but never used", decl.Name)
		}
	}
}
