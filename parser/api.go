package parser

import (
	"io"
)

// ParseReader consumes Worms source from an io.Reader and returns its AST.
func ParseReader(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Tokens lexes src completely. On error the tokens read so far are returned
// together with the error.
func Tokens(src string) ([]Token, error) {
	var tokens []Token
	for tok, err := range Tokenize(src) {
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// IsImplicit reports whether tok is a separator inserted at a line break.
func (tok Token) IsImplicit() bool {
	return tok.Type == tokenSemicolon && tok.Lexeme == "\n"
}

// Text returns the source text of tok, or its canonical spelling for tokens
// that carry no lexeme.
func (tok Token) Text() string {
	if tok.IsImplicit() {
		return "\\n"
	}
	if tok.Lexeme != "" {
		return tok.Lexeme
	}
	if tok.Type == tokenEOF {
		return ""
	}
	return tok.Type.String()
}
