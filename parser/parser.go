package parser

import (
	"fmt"
	"strconv"

	"github.com/sergev/wormscript/lang"
)

// Parse translates source text into a Program AST.
func Parse(src string) (*Program, error) {
	p := &parser{
		lx: newLexer(src),
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseProgram()
}

type parser struct {
	lx      *lexer
	curr    Token
	peekTok Token
	hasPeek bool
}

func (p *parser) advance() error {
	if p.hasPeek {
		p.curr = p.peekTok
		p.hasPeek = false
		return nil
	}
	tok, err := p.lx.nextToken()
	if err != nil {
		return err
	}
	p.curr = tok
	return nil
}

func (p *parser) peek() (Token, error) {
	if !p.hasPeek {
		tok, err := p.lx.nextToken()
		if err != nil {
			return Token{}, err
		}
		p.peekTok = tok
		p.hasPeek = true
	}
	return p.peekTok, nil
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if p.curr.Type != tt {
		return Token{}, p.errorf(p.curr.Pos, "expected %s, found %s", tt, describe(p.curr))
	}
	tok := p.curr
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// skipImplicitSemicolons drops separators inserted at line breaks, allowing
// an opening brace or an else keyword to start the next line.
func (p *parser) skipImplicitSemicolons() error {
	for p.curr.Type == tokenSemicolon && p.curr.Lexeme == "\n" {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseProgram() (*Program, error) {
	start := p.curr
	stmts, err := p.parseBlockBody(tokenEOF)
	if err != nil {
		return nil, err
	}
	return &Program{
		Body: &BlockStmt{
			Stmts: stmts,
			Posn:  posFromToken(start),
		},
	}, nil
}

func (p *parser) parseBlock() (*BlockStmt, error) {
	braceTok, err := p.expect(tokenLBrace)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseBlockBody(tokenRBrace)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRBrace); err != nil {
		return nil, err
	}
	return &BlockStmt{
		Stmts: stmts,
		Posn:  posFromToken(braceTok),
	}, nil
}

// parseBlockBody parses statements up to (not including) the end token.
// Declarations are only accepted before the first other statement.
func (p *parser) parseBlockBody(end TokenType) ([]Stmt, error) {
	var stmts []Stmt
	seenStmt := false
	for p.curr.Type != end {
		switch {
		case p.curr.Type == tokenEOF:
			return nil, p.errorf(p.curr.Pos, "expected } to close block, found EOF")
		case p.curr.Type == tokenSemicolon:
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		case isTypeKeyword(p.curr.Type):
			if seenStmt {
				return nil, p.errorf(p.curr.Pos, "declarations must appear at the start of a block")
			}
			decl, err := p.parseDecl()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, decl)
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		seenStmt = true
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func isTypeKeyword(tt TokenType) bool {
	return tt == tokenDouble || tt == tokenBool || tt == tokenEntity
}

func (p *parser) parseDecl() (Stmt, error) {
	typeTok := p.curr
	typ, ok := lang.TypeByName(typeTok.Lexeme)
	if !ok {
		return nil, p.errorf(typeTok.Pos, "unknown type %s", typeTok.Lexeme)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	var init Expr
	if p.curr.Type == tokenAssign {
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		init = value
	}
	if _, err := p.expect(tokenSemicolon); err != nil {
		return nil, err
	}
	return &DeclStmt{
		Name: nameTok.Lexeme,
		Type: typ,
		Init: init,
		Posn: posFromToken(typeTok),
	}, nil
}

func (p *parser) parseStatement() (Stmt, error) {
	switch p.curr.Type {
	case tokenWhile:
		return p.parseWhileStmt()
	case tokenIf:
		return p.parseIfStmt()
	case tokenPrint:
		return p.parsePrintStmt()
	case tokenLBrace:
		return p.parseBlock()
	case tokenIdentifier:
		if stmt, ok, err := p.tryParseAssignmentStmt(); err != nil {
			return nil, err
		} else if ok {
			return stmt, nil
		}
		return p.parseActionStmt()
	default:
		return nil, p.errorf(p.curr.Pos, "unexpected %s at start of statement", describe(p.curr))
	}
}

func (p *parser) tryParseAssignmentStmt() (Stmt, bool, error) {
	nameTok := p.curr
	peek, err := p.peek()
	if err != nil {
		return nil, false, err
	}
	if peek.Type != tokenAssign {
		return nil, false, nil
	}
	if _, err := p.expect(tokenIdentifier); err != nil {
		return nil, false, err
	}
	if _, err := p.expect(tokenAssign); err != nil {
		return nil, false, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, false, err
	}
	if _, err := p.expect(tokenSemicolon); err != nil {
		return nil, false, err
	}
	return &AssignStmt{
		Name: nameTok.Lexeme,
		Expr: value,
		Posn: posFromToken(nameTok),
	}, true, nil
}

// parseActionStmt accepts both name(args) and the bare forms "name;" and
// "name expr;".
func (p *parser) parseActionStmt() (Stmt, error) {
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	var args []Expr
	switch p.curr.Type {
	case tokenLParen:
		if _, err := p.expect(tokenLParen); err != nil {
			return nil, err
		}
		args, err = p.parseArgumentList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
	case tokenSemicolon:
	default:
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = []Expr{arg}
	}
	if _, err := p.expect(tokenSemicolon); err != nil {
		return nil, err
	}
	return &ActionStmt{
		Name: nameTok.Lexeme,
		Args: args,
		Posn: posFromToken(nameTok),
	}, nil
}

func (p *parser) parseWhileStmt() (Stmt, error) {
	whTok, err := p.expect(tokenWhile)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.skipImplicitSemicolons(); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{
		Cond: cond,
		Body: body,
		Posn: posFromToken(whTok),
	}, nil
}

func (p *parser) parseIfStmt() (Stmt, error) {
	ifTok, err := p.expect(tokenIf)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.skipImplicitSemicolons(); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if p.curr.Type == tokenSemicolon && p.curr.Lexeme == "\n" {
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.Type == tokenElse {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	var elseBlock *BlockStmt
	if p.curr.Type == tokenElse {
		elseTok, err := p.expect(tokenElse)
		if err != nil {
			return nil, err
		}
		if err := p.skipImplicitSemicolons(); err != nil {
			return nil, err
		}
		if p.curr.Type == tokenIf {
			nested, err := p.parseIfStmt()
			if err != nil {
				return nil, err
			}
			elseBlock = &BlockStmt{
				Stmts: []Stmt{nested},
				Posn:  posFromToken(elseTok),
			}
		} else {
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			elseBlock = block
		}
	}
	return &IfStmt{
		Cond: cond,
		Then: thenBlock,
		Else: elseBlock,
		Posn: posFromToken(ifTok),
	}, nil
}

func (p *parser) parsePrintStmt() (Stmt, error) {
	printTok, err := p.expect(tokenPrint)
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenSemicolon); err != nil {
		return nil, err
	}
	return &PrintStmt{
		Expr: value,
		Posn: posFromToken(printTok),
	}, nil
}

func (p *parser) parseExpression() (Expr, error) {
	return p.parseLogicalOr()
}

var binaryOperators = map[TokenType]Operator{
	tokenOrOr:         OpOr,
	tokenAndAnd:       OpAnd,
	tokenEqualEqual:   OpEqual,
	tokenBangEqual:    OpNotEqual,
	tokenLess:         OpLess,
	tokenLessEqual:    OpLessEqual,
	tokenGreater:      OpGreater,
	tokenGreaterEqual: OpGreaterEqual,
	tokenPlus:         OpAdd,
	tokenMinus:        OpSub,
	tokenStar:         OpMul,
	tokenSlash:        OpDiv,
}

// parseBinaryLevel parses a left-associative chain of the given operators
// whose operands are produced by next.
func (p *parser) parseBinaryLevel(next func() (Expr, error), ops ...TokenType) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for containsToken(ops, p.curr.Type) {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Op:    binaryOperators[opTok.Type],
			Left:  left,
			Right: right,
			Posn:  posFromToken(opTok),
		}
	}
	return left, nil
}

func containsToken(set []TokenType, tt TokenType) bool {
	for _, candidate := range set {
		if candidate == tt {
			return true
		}
	}
	return false
}

func (p *parser) parseLogicalOr() (Expr, error) {
	return p.parseBinaryLevel(p.parseLogicalAnd, tokenOrOr)
}

func (p *parser) parseLogicalAnd() (Expr, error) {
	return p.parseBinaryLevel(p.parseEquality, tokenAndAnd)
}

func (p *parser) parseEquality() (Expr, error) {
	return p.parseBinaryLevel(p.parseComparison, tokenEqualEqual, tokenBangEqual)
}

func (p *parser) parseComparison() (Expr, error) {
	return p.parseBinaryLevel(p.parseTerm, tokenLess, tokenLessEqual, tokenGreater, tokenGreaterEqual)
}

func (p *parser) parseTerm() (Expr, error) {
	return p.parseBinaryLevel(p.parseFactor, tokenPlus, tokenMinus)
}

func (p *parser) parseFactor() (Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, tokenStar, tokenSlash)
}

func (p *parser) parseUnary() (Expr, error) {
	if p.curr.Type == tokenBang || p.curr.Type == tokenMinus {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		op := OpNeg
		if opTok.Type == tokenBang {
			op = OpNot
		}
		return &UnaryExpr{
			Op:   op,
			Expr: expr,
			Posn: posFromToken(opTok),
		}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parseArgumentList() ([]Expr, error) {
	var args []Expr
	if p.curr.Type == tokenRParen {
		return args, nil
	}
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, expr)
		if p.curr.Type != tokenComma {
			break
		}
		if _, err := p.expect(tokenComma); err != nil {
			return nil, err
		}
	}
	return args, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.curr.Type {
	case tokenIdentifier:
		tok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		if p.curr.Type != tokenLParen {
			return &IdentifierExpr{
				Name: tok.Lexeme,
				Posn: posFromToken(tok),
			}, nil
		}
		if _, err := p.expect(tokenLParen); err != nil {
			return nil, err
		}
		args, err := p.parseArgumentList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return &CallExpr{
			Name: tok.Lexeme,
			Args: args,
			Posn: posFromToken(tok),
		}, nil
	case tokenNumber:
		tok, err := p.expect(tokenNumber)
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorf(tok.Pos, "invalid number literal %s", tok.Lexeme)
		}
		return &NumberExpr{
			Value:  value,
			Lexeme: tok.Lexeme,
			Posn:   posFromToken(tok),
		}, nil
	case tokenTrue, tokenFalse:
		tok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolExpr{
			Value: tok.Type == tokenTrue,
			Posn:  posFromToken(tok),
		}, nil
	case tokenNull:
		tok, err := p.expect(tokenNull)
		if err != nil {
			return nil, err
		}
		return &NullExpr{Posn: posFromToken(tok)}, nil
	case tokenSelf:
		tok, err := p.expect(tokenSelf)
		if err != nil {
			return nil, err
		}
		return &SelfExpr{Posn: posFromToken(tok)}, nil
	case tokenLParen:
		if _, err := p.expect(tokenLParen); err != nil {
			return nil, err
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf(p.curr.Pos, "unexpected %s in expression", describe(p.curr))
	}
}

// errorf builds a syntax error. Errors raised at EOF are flagged as
// incomplete so interactive callers can keep reading input.
func (p *parser) errorf(pos Position, format string, args ...interface{}) error {
	return newSyntaxError(pos, p.curr.Type == tokenEOF, fmt.Errorf(format, args...))
}

func describe(tok Token) string {
	if tok.Type == tokenSemicolon && tok.Lexeme == "\n" {
		return "newline"
	}
	return tok.Type.String()
}

func posFromToken(tok Token) Position {
	return tok.Pos
}
