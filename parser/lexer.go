package parser

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	src    string
	pos    int
	line   int
	column int

	hasLastToken bool
	lastToken    TokenType
	lastPos      Position
	bufferedTok  *Token
	parenDepth   int
	done         bool
}

func newLexer(src string) *lexer {
	return &lexer{
		src:    src,
		line:   1,
		column: 1,
	}
}

// Tokenize returns the lazy token sequence of src. Every range over the
// sequence lexes from the beginning of the text. The sequence ends after the
// EOF token or after the first error.
func Tokenize(src string) iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		lx := newLexer(src)
		for {
			tok, err := lx.nextToken()
			if err != nil {
				yield(tok, err)
				return
			}
			if !yield(tok, nil) || tok.Type == tokenEOF {
				return
			}
		}
	}
}

type runeState struct {
	pos    int
	line   int
	column int
}

func (lx *lexer) mark() runeState {
	return runeState{
		pos:    lx.pos,
		line:   lx.line,
		column: lx.column,
	}
}

func (lx *lexer) restore(state runeState) {
	lx.pos = state.pos
	lx.line = state.line
	lx.column = state.column
}

func (lx *lexer) readRune() (rune, runeState, error) {
	if lx.pos >= len(lx.src) {
		return 0, lx.mark(), io.EOF
	}
	state := lx.mark()
	r, w := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if r == utf8.RuneError && w == 1 {
		return 0, state, newLexError(positionFromState(state), fmt.Errorf("invalid UTF-8 encoding at byte %d", lx.pos))
	}
	lx.pos += w
	if r == '\n' {
		lx.line++
		lx.column = 1
	} else {
		lx.column++
	}
	return r, state, nil
}

func (lx *lexer) unread(state runeState) {
	lx.restore(state)
}

func (lx *lexer) skipWhitespace() (bool, error) {
	sawNewline := false
	for {
		r, state, err := lx.readRune()
		if err == io.EOF {
			return sawNewline, nil
		}
		if err != nil {
			return false, err
		}
		switch {
		case unicode.IsSpace(r):
			if r == '\n' {
				sawNewline = true
			}
			continue
		case r == '/':
			next, nextState, err := lx.readRune()
			if err == io.EOF {
				lx.unread(state)
				return sawNewline, nil
			}
			if err != nil {
				return false, err
			}
			if next == '/' {
				if err := lx.skipLine(); err != nil {
					if err == io.EOF {
						return sawNewline, nil
					}
					return false, err
				}
				sawNewline = true
				continue
			}
			if next == '*' {
				newlineInComment, err := lx.skipBlockComment(state)
				if err != nil {
					return false, err
				}
				if newlineInComment {
					sawNewline = true
				}
				continue
			}
			lx.unread(nextState)
			lx.unread(state)
			return sawNewline, nil
		default:
			lx.unread(state)
			return sawNewline, nil
		}
	}
}

func (lx *lexer) skipLine() error {
	for {
		r, _, err := lx.readRune()
		if err != nil {
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

func (lx *lexer) skipBlockComment(start runeState) (bool, error) {
	sawNewline := false
	unterminated := func() error {
		return newIncompleteLexError(positionFromState(start), fmt.Errorf("unterminated block comment"))
	}
	for {
		r, _, err := lx.readRune()
		if err != nil {
			if err == io.EOF {
				return sawNewline, unterminated()
			}
			return sawNewline, err
		}
		if r == '\n' {
			sawNewline = true
		}
		if r == '*' {
			next, state, err := lx.readRune()
			if err == io.EOF {
				return sawNewline, unterminated()
			}
			if err != nil {
				return sawNewline, err
			}
			if next == '/' {
				return sawNewline, nil
			}
			lx.unread(state)
		}
	}
}

func (lx *lexer) nextToken() (Token, error) {
	if lx.bufferedTok != nil {
		defer func() { lx.bufferedTok = nil }()
		return lx.emit(*lx.bufferedTok), nil
	}
	if lx.done {
		return lx.eofToken(lx.mark()), nil
	}

	sawNewline, err := lx.skipWhitespace()
	if err != nil {
		return Token{}, err
	}
	if sawNewline && lx.shouldInsertSemicolon() {
		return lx.emit(implicitSemicolon(lx.lastPos)), nil
	}

	start := lx.mark()
	r, _, err := lx.readRune()
	if err == io.EOF {
		if lx.shouldInsertSemicolon() {
			return lx.emit(implicitSemicolon(lx.lastPos)), nil
		}
		lx.done = true
		return lx.emit(lx.eofToken(start)), nil
	}
	if err != nil {
		return Token{}, err
	}

	switch {
	case isIdentifierStart(r):
		lexeme, err := lx.scanIdentifier(r)
		if err != nil {
			return Token{}, err
		}
		return lx.maybeEmitWithBuffer(makeIdentifierToken(lexeme, start))
	case unicode.IsDigit(r):
		lexeme, err := lx.scanNumber(r, start)
		if err != nil {
			return Token{}, err
		}
		tok := Token{
			Type:   tokenNumber,
			Lexeme: lexeme,
			Pos:    positionFromState(start),
		}
		return lx.maybeEmitWithBuffer(tok)
	}

	var tok Token
	switch r {
	case '+':
		tok = simpleToken(tokenPlus, start)
	case '-':
		tok = simpleToken(tokenMinus, start)
	case '*':
		tok = simpleToken(tokenStar, start)
	case '/':
		tok = simpleToken(tokenSlash, start)
	case '(':
		tok = simpleToken(tokenLParen, start)
	case ')':
		tok = simpleToken(tokenRParen, start)
	case '{':
		tok = simpleToken(tokenLBrace, start)
	case '}':
		tok = simpleToken(tokenRBrace, start)
	case ',':
		tok = simpleToken(tokenComma, start)
	case ';':
		tok = simpleToken(tokenSemicolon, start)
	case ':':
		if !lx.match('=') {
			return lx.illegal(start, fmt.Errorf("expected '=' after ':'"))
		}
		tok = simpleToken(tokenAssign, start)
	case '=':
		if !lx.match('=') {
			return lx.illegal(start, fmt.Errorf("unexpected '=': use := for assignment or == for comparison"))
		}
		tok = simpleToken(tokenEqualEqual, start)
	case '!':
		if lx.match('=') {
			tok = simpleToken(tokenBangEqual, start)
		} else {
			tok = simpleToken(tokenBang, start)
		}
	case '<':
		if lx.match('=') {
			tok = simpleToken(tokenLessEqual, start)
		} else {
			tok = simpleToken(tokenLess, start)
		}
	case '>':
		if lx.match('=') {
			tok = simpleToken(tokenGreaterEqual, start)
		} else {
			tok = simpleToken(tokenGreater, start)
		}
	case '&':
		if !lx.match('&') {
			return lx.illegal(start, fmt.Errorf("unexpected '&': did you mean &&?"))
		}
		tok = simpleToken(tokenAndAnd, start)
	case '|':
		if !lx.match('|') {
			return lx.illegal(start, fmt.Errorf("unexpected '|': did you mean ||?"))
		}
		tok = simpleToken(tokenOrOr, start)
	default:
		return lx.illegal(start, fmt.Errorf("unexpected character %q", r))
	}

	return lx.maybeEmitWithBuffer(tok)
}

func (lx *lexer) eofToken(state runeState) Token {
	return Token{
		Type: tokenEOF,
		Pos:  positionFromState(state),
	}
}

func (lx *lexer) illegal(start runeState, err error) (Token, error) {
	tok := simpleToken(tokenIllegal, start)
	lx.done = true
	return lx.emit(tok), newLexError(tok.Pos, err)
}

// maybeEmitWithBuffer inserts a separator before a closing brace that ends a
// statement on the same line, so "{ move }" needs no explicit semicolon.
func (lx *lexer) maybeEmitWithBuffer(tok Token) (Token, error) {
	if tok.Type == tokenRBrace && lx.shouldInsertSemicolon() {
		copied := tok
		lx.bufferedTok = &copied
		return lx.emit(implicitSemicolon(lx.lastPos)), nil
	}
	return lx.emit(tok), nil
}

func (lx *lexer) emit(tok Token) Token {
	lx.adjustParenDepth(tok.Type)
	lx.hasLastToken = tok.Type != tokenIllegal
	lx.lastToken = tok.Type
	lx.lastPos = tok.Pos
	return tok
}

func (lx *lexer) adjustParenDepth(tt TokenType) {
	switch tt {
	case tokenLParen:
		lx.parenDepth++
	case tokenRParen:
		if lx.parenDepth > 0 {
			lx.parenDepth--
		}
	}
}

func (lx *lexer) shouldInsertSemicolon() bool {
	if !lx.hasLastToken || lx.parenDepth > 0 {
		return false
	}
	switch lx.lastToken {
	case tokenIdentifier,
		tokenNumber,
		tokenTrue,
		tokenFalse,
		tokenNull,
		tokenSelf,
		tokenRParen,
		tokenRBrace:
		return true
	}
	return false
}

func (lx *lexer) match(expected rune) bool {
	state := lx.mark()
	r, _, err := lx.readRune()
	if err != nil {
		lx.unread(state)
		return false
	}
	if r != expected {
		lx.unread(state)
		return false
	}
	return true
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (lx *lexer) scanIdentifier(initial rune) (string, error) {
	var builder strings.Builder
	builder.WriteRune(initial)
	for {
		r, state, err := lx.readRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if !isIdentifierPart(r) {
			lx.unread(state)
			break
		}
		builder.WriteRune(r)
	}
	return builder.String(), nil
}

func (lx *lexer) scanNumber(initial rune, start runeState) (string, error) {
	var builder strings.Builder
	builder.WriteRune(initial)
	seenDot := false
	seenExponent := false

	for {
		r, state, err := lx.readRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		if unicode.IsDigit(r) {
			builder.WriteRune(r)
			continue
		}
		if r == '.' && !seenDot && !seenExponent {
			seenDot = true
			builder.WriteRune(r)
			continue
		}
		if (r == 'e' || r == 'E') && !seenExponent {
			seenExponent = true
			builder.WriteRune(r)
			next, nextState, err := lx.readRune()
			if err == io.EOF {
				return "", newIncompleteLexError(positionFromState(start), fmt.Errorf("unterminated exponent in number literal"))
			}
			if err != nil {
				return "", err
			}
			if next == '+' || next == '-' {
				builder.WriteRune(next)
				next, nextState, err = lx.readRune()
				if err == io.EOF {
					return "", newIncompleteLexError(positionFromState(start), fmt.Errorf("unterminated exponent in number literal"))
				}
				if err != nil {
					return "", err
				}
			}
			if !unicode.IsDigit(next) {
				return "", newLexError(positionFromState(start), fmt.Errorf("malformed exponent in number literal %q", builder.String()))
			}
			lx.unread(nextState)
			continue
		}
		lx.unread(state)
		break
	}

	return builder.String(), nil
}

func makeIdentifierToken(lexeme string, start runeState) Token {
	if keywordType, ok := keywordToken(lexeme); ok {
		return Token{
			Type:   keywordType,
			Lexeme: lexeme,
			Pos:    positionFromState(start),
		}
	}
	return Token{
		Type:   tokenIdentifier,
		Lexeme: lexeme,
		Pos:    positionFromState(start),
	}
}

func keywordToken(lexeme string) (TokenType, bool) {
	switch lexeme {
	case "double":
		return tokenDouble, true
	case "bool":
		return tokenBool, true
	case "entity":
		return tokenEntity, true
	case "while":
		return tokenWhile, true
	case "if":
		return tokenIf, true
	case "else":
		return tokenElse, true
	case "print":
		return tokenPrint, true
	case "true":
		return tokenTrue, true
	case "false":
		return tokenFalse, true
	case "null":
		return tokenNull, true
	case "self":
		return tokenSelf, true
	default:
		return tokenIllegal, false
	}
}

// implicitSemicolon is a separator inserted at a line break; its lexeme is
// the newline so the parser can tell it apart from a written ';'.
func implicitSemicolon(pos Position) Token {
	return Token{
		Type:   tokenSemicolon,
		Lexeme: "\n",
		Pos:    pos,
	}
}

func simpleToken(tt TokenType, start runeState) Token {
	return Token{
		Type: tt,
		Pos:  positionFromState(start),
	}
}

func positionFromState(state runeState) Position {
	return Position{
		Offset: state.pos,
		Line:   state.line,
		Column: state.column,
	}
}
