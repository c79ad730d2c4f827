package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sergev/wormscript/diag"
	"github.com/sergev/wormscript/lang"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return prog
}

func TestParseWormLoop(t *testing.T) {
	src := `
double x;
while (x < 1.5) {
	x := x + 0.1;
}
turn x;
`
	prog := mustParse(t, src)
	stmts := prog.Body.Stmts
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	decl, ok := stmts[0].(*DeclStmt)
	if !ok {
		t.Fatalf("expected DeclStmt, got %T", stmts[0])
	}
	if decl.Name != "x" || decl.Type != lang.TypeNumber || decl.Init != nil {
		t.Fatalf("unexpected declaration %+v", decl)
	}
	loop, ok := stmts[1].(*WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", stmts[1])
	}
	cond, ok := loop.Cond.(*BinaryExpr)
	if !ok || cond.Op != OpLess {
		t.Fatalf("expected < condition, got %#v", loop.Cond)
	}
	if len(loop.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement in loop body, got %d", len(loop.Body.Stmts))
	}
	if _, ok := loop.Body.Stmts[0].(*AssignStmt); !ok {
		t.Fatalf("expected AssignStmt in loop body, got %T", loop.Body.Stmts[0])
	}
	action, ok := stmts[2].(*ActionStmt)
	if !ok {
		t.Fatalf("expected ActionStmt, got %T", stmts[2])
	}
	if action.Name != "turn" || len(action.Args) != 1 {
		t.Fatalf("expected turn with one argument, got %s/%d", action.Name, len(action.Args))
	}
	if action.Pos().Line != 6 || action.Pos().Column != 1 {
		t.Fatalf("unexpected action position %+v", action.Pos())
	}
}

func TestParseActionForms(t *testing.T) {
	cases := []struct {
		src   string
		name  string
		nargs int
	}{
		{"move;", "move", 0},
		{"move();", "move", 0},
		{"move", "move", 0},
		{"turn(0.5);", "turn", 1},
		{"turn 0.5;", "turn", 1},
		{"turn -getdir(self) / 2;", "turn", 1},
		{"shoot(10)", "shoot", 1},
		{"foo(1, 2, true);", "foo", 3},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			prog := mustParse(t, tc.src)
			if len(prog.Body.Stmts) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(prog.Body.Stmts))
			}
			action, ok := prog.Body.Stmts[0].(*ActionStmt)
			if !ok {
				t.Fatalf("expected ActionStmt, got %T", prog.Body.Stmts[0])
			}
			if action.Name != tc.name || len(action.Args) != tc.nargs {
				t.Fatalf("expected %s with %d args, got %s with %d", tc.name, tc.nargs, action.Name, len(action.Args))
			}
		})
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	prog := mustParse(t, "print 1 + 2 * 3 < 7 && !false || x == y;")
	printStmt := prog.Body.Stmts[0].(*PrintStmt)

	or, ok := printStmt.Expr.(*BinaryExpr)
	if !ok || or.Op != OpOr {
		t.Fatalf("expected || at top, got %#v", printStmt.Expr)
	}
	and, ok := or.Left.(*BinaryExpr)
	if !ok || and.Op != OpAnd {
		t.Fatalf("expected && on the left of ||, got %#v", or.Left)
	}
	less, ok := and.Left.(*BinaryExpr)
	if !ok || less.Op != OpLess {
		t.Fatalf("expected < on the left of &&, got %#v", and.Left)
	}
	sum, ok := less.Left.(*BinaryExpr)
	if !ok || sum.Op != OpAdd {
		t.Fatalf("expected + under <, got %#v", less.Left)
	}
	product, ok := sum.Right.(*BinaryExpr)
	if !ok || product.Op != OpMul {
		t.Fatalf("expected * to bind tighter than +, got %#v", sum.Right)
	}
	not, ok := and.Right.(*UnaryExpr)
	if !ok || not.Op != OpNot {
		t.Fatalf("expected ! on the right of &&, got %#v", and.Right)
	}
	eq, ok := or.Right.(*BinaryExpr)
	if !ok || eq.Op != OpEqual {
		t.Fatalf("expected == on the right of ||, got %#v", or.Right)
	}
}

func TestParseLeftAssociativity(t *testing.T) {
	prog := mustParse(t, "print 8 - 4 - 2;")
	outer := prog.Body.Stmts[0].(*PrintStmt).Expr.(*BinaryExpr)
	inner, ok := outer.Left.(*BinaryExpr)
	if !ok || inner.Op != OpSub {
		t.Fatalf("expected (8 - 4) - 2, got %#v", outer)
	}
	if n, ok := outer.Right.(*NumberExpr); !ok || n.Value != 2 {
		t.Fatalf("expected right operand 2, got %#v", outer.Right)
	}
}

func TestParseQueriesAndLiterals(t *testing.T) {
	prog := mustParse(t, "entity e := searchobj(0.0); bool b := e != null && isworm(e); print self;")
	stmts := prog.Body.Stmts
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	decl := stmts[0].(*DeclStmt)
	call, ok := decl.Init.(*CallExpr)
	if !ok || call.Name != "searchobj" || len(call.Args) != 1 {
		t.Fatalf("expected searchobj call initializer, got %#v", decl.Init)
	}
	bdecl := stmts[1].(*DeclStmt)
	if bdecl.Type != lang.TypeBoolean {
		t.Fatalf("expected bool declaration, got %v", bdecl.Type)
	}
	and := bdecl.Init.(*BinaryExpr)
	ne := and.Left.(*BinaryExpr)
	if _, ok := ne.Right.(*NullExpr); !ok {
		t.Fatalf("expected null literal, got %#v", ne.Right)
	}
	if _, ok := stmts[2].(*PrintStmt).Expr.(*SelfExpr); !ok {
		t.Fatalf("expected self literal in print")
	}
}

func TestParseIfElseChains(t *testing.T) {
	src := `
if (getx(self) > 10) {
	turn(1);
}
else if (canmove()) {
	move;
} else {
	jump;
}
`
	prog := mustParse(t, src)
	if len(prog.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body.Stmts))
	}
	ifStmt := prog.Body.Stmts[0].(*IfStmt)
	if ifStmt.Else == nil || len(ifStmt.Else.Stmts) != 1 {
		t.Fatalf("expected else block wrapping the nested if")
	}
	nested, ok := ifStmt.Else.Stmts[0].(*IfStmt)
	if !ok {
		t.Fatalf("expected nested IfStmt, got %T", ifStmt.Else.Stmts[0])
	}
	if nested.Else == nil {
		t.Fatalf("expected final else branch")
	}
	if _, ok := nested.Else.Stmts[0].(*ActionStmt); !ok {
		t.Fatalf("expected jump in final else, got %T", nested.Else.Stmts[0])
	}
}

func TestParseBraceOnNextLine(t *testing.T) {
	src := "while (true)\n{\n\tmove\n}\n"
	prog := mustParse(t, src)
	loop, ok := prog.Body.Stmts[0].(*WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", prog.Body.Stmts[0])
	}
	if len(loop.Body.Stmts) != 1 {
		t.Fatalf("expected one statement in body, got %d", len(loop.Body.Stmts))
	}
}

func TestParseNestedDeclarations(t *testing.T) {
	src := `
double a := 1;
if (a > 0) {
	double b := a * 2;
	bool ok;
	print b;
}
`
	prog := mustParse(t, src)
	ifStmt := prog.Body.Stmts[1].(*IfStmt)
	if len(ifStmt.Then.Stmts) != 3 {
		t.Fatalf("expected 3 statements in then block, got %d", len(ifStmt.Then.Stmts))
	}
	if _, ok := ifStmt.Then.Stmts[1].(*DeclStmt); !ok {
		t.Fatalf("expected second statement to be a declaration")
	}
}

func TestParseEmptyProgram(t *testing.T) {
	for _, src := range []string{"", "   \n// only a comment\n", ";;"} {
		prog := mustParse(t, src)
		if len(prog.Body.Stmts) != 0 {
			t.Fatalf("expected empty program for %q, got %d statements", src, len(prog.Body.Stmts))
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name       string
		src        string
		wantErr    string
		incomplete bool
	}{
		{"declaration after statement", "move; double x;", "declarations must appear at the start of a block", false},
		{"missing semicolon", "x := 1 y := 2;", "expected ;", false},
		{"unterminated while", "while (true) { move;", "expected } to close block", true},
		{"unclosed paren", "turn(1", "expected )", true},
		{"missing expression", "x := ;", "unexpected ; in expression", false},
		{"bad statement start", "1 + 2;", "unexpected number at start of statement", false},
		{"missing declaration name", "double := 1;", "expected identifier", false},
		{"else without if", "else { move; }", "unexpected else", false},
		{"lex error", "x := 1 = 2;", "use := for assignment", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
			if IsIncomplete(err) != tc.incomplete {
				t.Fatalf("expected incomplete=%v for %v", tc.incomplete, err)
			}
		})
	}
}

func TestParseErrorPositionAndStage(t *testing.T) {
	_, err := Parse("double x;\nmove;\nbool y;")
	if err == nil {
		t.Fatalf("expected error")
	}
	diags := AsDiagnostics(err)
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Stage != diag.StageSyntax {
		t.Fatalf("expected syntax stage, got %v", d.Stage)
	}
	if d.Line != 3 || d.Column != 1 {
		t.Fatalf("expected error at 3:1, got %d:%d", d.Line, d.Column)
	}

	_, err = Parse("x := 1 & 2;")
	if diags := AsDiagnostics(err); len(diags) != 1 || diags[0].Stage != diag.StageLex {
		t.Fatalf("expected lex diagnostic, got %v", diags)
	}
}

func TestBareAndParenthesizedActionsMatch(t *testing.T) {
	ignorePositions := cmp.Comparer(func(a, b Position) bool { return true })
	pairs := [][2]string{
		{"turn x;", "turn(x);"},
		{"move;", "move();"},
		{"shoot 10 * getap(self)\n", "shoot(10 * getap(self));"},
	}
	for _, pair := range pairs {
		bare := mustParse(t, pair[0])
		paren := mustParse(t, pair[1])
		if diff := cmp.Diff(paren, bare, ignorePositions); diff != "" {
			t.Fatalf("%q and %q differ (-paren +bare):\n%s", pair[0], pair[1], diff)
		}
	}
}
