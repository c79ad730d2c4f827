// Package sexpr renders syntax trees as s-expressions, a compact one-line
// form for inspecting and comparing parse results.
package sexpr

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sergev/wormscript/parser"
)

// Format renders n as an s-expression. A Program renders one top-level
// statement per line.
func Format(n parser.Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// Fprint writes the s-expression of n followed by a newline.
func Fprint(w io.Writer, n parser.Node) error {
	_, err := io.WriteString(w, Format(n)+"\n")
	return err
}

func writeNode(b *strings.Builder, n parser.Node) {
	switch n := n.(type) {
	case *parser.Program:
		for i, stmt := range n.Body.Stmts {
			if i > 0 {
				b.WriteByte('\n')
			}
			writeNode(b, stmt)
		}
	case parser.Stmt:
		writeStmt(b, n)
	case parser.Expr:
		writeExpr(b, n)
	default:
		fmt.Fprintf(b, "#<%T>", n)
	}
}

func writeStmt(b *strings.Builder, s parser.Stmt) {
	switch s := s.(type) {
	case *parser.BlockStmt:
		b.WriteString("(block")
		for _, stmt := range s.Stmts {
			b.WriteByte(' ')
			writeStmt(b, stmt)
		}
		b.WriteByte(')')
	case *parser.DeclStmt:
		fmt.Fprintf(b, "(decl %s %s", s.Type, s.Name)
		if s.Init != nil {
			b.WriteByte(' ')
			writeExpr(b, s.Init)
		}
		b.WriteByte(')')
	case *parser.AssignStmt:
		fmt.Fprintf(b, "(set %s ", s.Name)
		writeExpr(b, s.Expr)
		b.WriteByte(')')
	case *parser.WhileStmt:
		b.WriteString("(while ")
		writeExpr(b, s.Cond)
		b.WriteByte(' ')
		writeStmt(b, s.Body)
		b.WriteByte(')')
	case *parser.IfStmt:
		b.WriteString("(if ")
		writeExpr(b, s.Cond)
		b.WriteByte(' ')
		writeStmt(b, s.Then)
		if s.Else != nil {
			b.WriteByte(' ')
			writeStmt(b, s.Else)
		}
		b.WriteByte(')')
	case *parser.PrintStmt:
		b.WriteString("(print ")
		writeExpr(b, s.Expr)
		b.WriteByte(')')
	case *parser.ActionStmt:
		writeList(b, "do "+s.Name, s.Args)
	default:
		fmt.Fprintf(b, "#<%T>", s)
	}
}

func writeExpr(b *strings.Builder, e parser.Expr) {
	switch e := e.(type) {
	case *parser.IdentifierExpr:
		b.WriteString(e.Name)
	case *parser.NumberExpr:
		if e.Lexeme != "" {
			b.WriteString(e.Lexeme)
		} else {
			b.WriteString(strconv.FormatFloat(e.Value, 'g', -1, 64))
		}
	case *parser.BoolExpr:
		if e.Value {
			b.WriteString("#t")
		} else {
			b.WriteString("#f")
		}
	case *parser.NullExpr:
		b.WriteString("null")
	case *parser.SelfExpr:
		b.WriteString("self")
	case *parser.CallExpr:
		writeList(b, e.Name, e.Args)
	case *parser.UnaryExpr:
		fmt.Fprintf(b, "(%s ", e.Op)
		writeExpr(b, e.Expr)
		b.WriteByte(')')
	case *parser.BinaryExpr:
		fmt.Fprintf(b, "(%s ", e.Op)
		writeExpr(b, e.Left)
		b.WriteByte(' ')
		writeExpr(b, e.Right)
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "#<%T>", e)
	}
}

func writeList(b *strings.Builder, head string, args []parser.Expr) {
	b.WriteByte('(')
	b.WriteString(head)
	for _, arg := range args {
		b.WriteByte(' ')
		writeExpr(b, arg)
	}
	b.WriteByte(')')
}
