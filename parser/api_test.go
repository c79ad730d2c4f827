package parser

import (
	"errors"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestParseReaderHandlesIOReturns(t *testing.T) {
	if _, err := ParseReader(failingReader{}); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected underlying IO error, got %v", err)
	}

	reader := strings.NewReader("double value := 5;\nturn value;\n")
	prog, err := ParseReader(reader)
	if err != nil {
		t.Fatalf("ParseReader returned error: %v", err)
	}
	if len(prog.Body.Stmts) != 2 {
		t.Fatalf("expected two statements from reader, got %d", len(prog.Body.Stmts))
	}
}

func TestTokensText(t *testing.T) {
	tokens, err := Tokens("x := 1.5\nmove")
	if err != nil {
		t.Fatalf("Tokens returned error: %v", err)
	}
	var texts []string
	for _, tok := range tokens {
		texts = append(texts, tok.Text())
	}
	got := strings.Join(texts, " ")
	want := `x := 1.5 \n move \n `
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestTokensReturnsPrefixOnError(t *testing.T) {
	tokens, err := Tokens("move @")
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(tokens) != 1 || tokens[0].Lexeme != "move" {
		t.Fatalf("expected the tokens read before the error, got %v", tokens)
	}
}
