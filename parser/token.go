package parser

// TokenType enumerates lexical categories recognised by the lexer.
type TokenType int

const (
	tokenEOF TokenType = iota
	tokenIllegal

	tokenIdentifier
	tokenNumber

	// Keywords
	tokenDouble
	tokenBool
	tokenEntity
	tokenWhile
	tokenIf
	tokenElse
	tokenPrint
	tokenTrue
	tokenFalse
	tokenNull
	tokenSelf

	// Operators and punctuation
	tokenAssign       // :=
	tokenEqualEqual   // ==
	tokenBangEqual    // !=
	tokenPlus         // +
	tokenMinus        // -
	tokenStar         // *
	tokenSlash        // /
	tokenLess         // <
	tokenLessEqual    // <=
	tokenGreater      // >
	tokenGreaterEqual // >=
	tokenBang         // !
	tokenAndAnd       // &&
	tokenOrOr         // ||

	tokenComma     // ,
	tokenSemicolon // ;
	tokenLParen    // (
	tokenRParen    // )
	tokenLBrace    // {
	tokenRBrace    // }
)

var tokenNames = [...]string{
	tokenEOF:          "EOF",
	tokenIllegal:      "illegal",
	tokenIdentifier:   "identifier",
	tokenNumber:       "number",
	tokenDouble:       "double",
	tokenBool:         "bool",
	tokenEntity:       "entity",
	tokenWhile:        "while",
	tokenIf:           "if",
	tokenElse:         "else",
	tokenPrint:        "print",
	tokenTrue:         "true",
	tokenFalse:        "false",
	tokenNull:         "null",
	tokenSelf:         "self",
	tokenAssign:       ":=",
	tokenEqualEqual:   "==",
	tokenBangEqual:    "!=",
	tokenPlus:         "+",
	tokenMinus:        "-",
	tokenStar:         "*",
	tokenSlash:        "/",
	tokenLess:         "<",
	tokenLessEqual:    "<=",
	tokenGreater:      ">",
	tokenGreaterEqual: ">=",
	tokenBang:         "!",
	tokenAndAnd:       "&&",
	tokenOrOr:         "||",
	tokenComma:        ",",
	tokenSemicolon:    ";",
	tokenLParen:       "(",
	tokenRParen:       ")",
	tokenLBrace:       "{",
	tokenRBrace:       "}",
}

func (tt TokenType) String() string {
	if tt >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return "unknown"
}

// Category is the coarse lexical class of a token.
type Category int

const (
	CategoryEOF Category = iota
	CategoryIdentifier
	CategoryLiteral
	CategoryKeyword
	CategoryOperator
	CategoryDelimiter
	CategoryIllegal
)

func (c Category) String() string {
	switch c {
	case CategoryEOF:
		return "EOF"
	case CategoryIdentifier:
		return "identifier"
	case CategoryLiteral:
		return "literal"
	case CategoryKeyword:
		return "keyword"
	case CategoryOperator:
		return "operator"
	case CategoryDelimiter:
		return "delimiter"
	default:
		return "illegal"
	}
}

// Category classifies the token type.
func (tt TokenType) Category() Category {
	switch {
	case tt == tokenEOF:
		return CategoryEOF
	case tt == tokenIdentifier:
		return CategoryIdentifier
	case tt == tokenNumber, tt == tokenTrue, tt == tokenFalse, tt == tokenNull:
		return CategoryLiteral
	case tt >= tokenDouble && tt <= tokenSelf:
		return CategoryKeyword
	case tt >= tokenAssign && tt <= tokenOrOr:
		return CategoryOperator
	case tt >= tokenComma && tt <= tokenRBrace:
		return CategoryDelimiter
	default:
		return CategoryIllegal
	}
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Type   TokenType
	Lexeme string // raw lexeme for identifiers and numbers
	Pos    Position
}
