package parser

import "github.com/sergev/wormscript/lang"

// Position tracks a source location within a script.
type Position struct {
	Offset int // zero-based byte offset
	Line   int // one-based line number
	Column int // one-based column number (rune count)
}

// Node represents any AST node with a source position.
type Node interface {
	Pos() Position
}

// Program is the root of a parsed script.
type Program struct {
	Body *BlockStmt
}

// Stmt represents a statement inside a block.
type Stmt interface {
	Node
	stmtNode()
}

// Expr represents an expression.
type Expr interface {
	Node
	exprNode()
}

// Operator enumerates unary and binary operators.
type Operator int

const (
	OpInvalid Operator = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpNeg
	OpNot
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpAnd
	OpOr
)

var operatorNames = [...]string{
	OpInvalid:      "?",
	OpAdd:          "+",
	OpSub:          "-",
	OpMul:          "*",
	OpDiv:          "/",
	OpNeg:          "-",
	OpNot:          "!",
	OpLess:         "<",
	OpLessEqual:    "<=",
	OpGreater:      ">",
	OpGreaterEqual: ">=",
	OpEqual:        "==",
	OpNotEqual:     "!=",
	OpAnd:          "&&",
	OpOr:           "||",
}

func (op Operator) String() string {
	if op >= 0 && int(op) < len(operatorNames) {
		return operatorNames[op]
	}
	return "?"
}

// IsArithmetic reports whether op maps numbers to a number.
func (op Operator) IsArithmetic() bool {
	return op >= OpAdd && op <= OpNeg
}

// IsRelational reports whether op compares two numbers.
func (op Operator) IsRelational() bool {
	return op >= OpLess && op <= OpGreaterEqual
}

// IsEquality reports whether op is == or !=.
func (op Operator) IsEquality() bool {
	return op == OpEqual || op == OpNotEqual
}

// IsLogical reports whether op works on booleans.
func (op Operator) IsLogical() bool {
	return op == OpNot || op == OpAnd || op == OpOr
}

// IdentifierExpr refers to a variable.
type IdentifierExpr struct {
	Name string
	Posn Position
}

func (e *IdentifierExpr) Pos() Position { return e.Posn }
func (*IdentifierExpr) exprNode()       {}

// NumberExpr is a numeric literal.
type NumberExpr struct {
	Value  float64
	Lexeme string
	Posn   Position
}

func (e *NumberExpr) Pos() Position { return e.Posn }
func (*NumberExpr) exprNode()       {}

// BoolExpr is a boolean literal.
type BoolExpr struct {
	Value bool
	Posn  Position
}

func (e *BoolExpr) Pos() Position { return e.Posn }
func (*BoolExpr) exprNode()       {}

// NullExpr is the null entity literal.
type NullExpr struct {
	Posn Position
}

func (e *NullExpr) Pos() Position { return e.Posn }
func (*NullExpr) exprNode()       {}

// SelfExpr refers to the entity executing the program.
type SelfExpr struct {
	Posn Position
}

func (e *SelfExpr) Pos() Position { return e.Posn }
func (*SelfExpr) exprNode()       {}

// CallExpr invokes a query or a pure builtin by name.
type CallExpr struct {
	Name string
	Args []Expr
	Posn Position
}

func (e *CallExpr) Pos() Position { return e.Posn }
func (*CallExpr) exprNode()       {}

// UnaryExpr represents prefix operator application.
type UnaryExpr struct {
	Op   Operator
	Expr Expr
	Posn Position
}

func (e *UnaryExpr) Pos() Position { return e.Posn }
func (*UnaryExpr) exprNode()       {}

// BinaryExpr represents infix operator application.
type BinaryExpr struct {
	Op          Operator
	Left, Right Expr
	Posn        Position
}

func (e *BinaryExpr) Pos() Position { return e.Posn }
func (*BinaryExpr) exprNode()       {}

// DeclStmt declares a typed variable, optionally initialised.
type DeclStmt struct {
	Name string
	Type lang.Type
	Init Expr // may be nil
	Posn Position
}

func (s *DeclStmt) Pos() Position { return s.Posn }
func (*DeclStmt) stmtNode()       {}

// BlockStmt is an ordered sequence of statements.
type BlockStmt struct {
	Stmts []Stmt
	Posn  Position
}

func (s *BlockStmt) Pos() Position { return s.Posn }
func (*BlockStmt) stmtNode()       {}

// AssignStmt mutates an existing binding.
type AssignStmt struct {
	Name string
	Expr Expr
	Posn Position
}

func (s *AssignStmt) Pos() Position { return s.Posn }
func (*AssignStmt) stmtNode()       {}

// WhileStmt repeats its body while the condition holds.
type WhileStmt struct {
	Cond Expr
	Body *BlockStmt
	Posn Position
}

func (s *WhileStmt) Pos() Position { return s.Posn }
func (*WhileStmt) stmtNode()       {}

// IfStmt conditionally executes branches. An else-if chain is represented
// as an Else block holding a single IfStmt.
type IfStmt struct {
	Cond Expr
	Then *BlockStmt
	Else *BlockStmt // may be nil
	Posn Position
}

func (s *IfStmt) Pos() Position { return s.Posn }
func (*IfStmt) stmtNode()       {}

// PrintStmt writes the value of an expression to the program output.
type PrintStmt struct {
	Expr Expr
	Posn Position
}

func (s *PrintStmt) Pos() Position { return s.Posn }
func (*PrintStmt) stmtNode()       {}

// ActionStmt invokes a world-affecting action by name.
type ActionStmt struct {
	Name string
	Args []Expr
	Posn Position
}

func (s *ActionStmt) Pos() Position { return s.Posn }
func (*ActionStmt) stmtNode()       {}
