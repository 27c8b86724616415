package lexer_test

import (
	"testing"

	"github.com/QuEraComputing/kirin/lexer"
)

func TestNextTokenClassifiesEachCategory(t *testing.T) {
	src := `stage @main fn @add(i64, i64) -> i64;`
	toks := lexer.All(src)

	want := []lexer.TokenType{
		lexer.STAGE, lexer.GLOBAL, lexer.FN, lexer.GLOBAL,
		lexer.LPAREN, lexer.IDENT, lexer.COMMA, lexer.IDENT, lexer.RPAREN,
		lexer.ARROW, lexer.IDENT, lexer.SEMI, lexer.EOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, tok := range toks {
		if tok.Type != want[i] {
			t.Fatalf("token %d = %s, want %s", i, tok.Type, want[i])
		}
	}
}

func TestSigiledIdentifiersKeepTheirSigil(t *testing.T) {
	toks := lexer.All(`@foo %bar ^baz`)
	want := []string{"@foo", "%bar", "^baz"}
	for i, lit := range want {
		if toks[i].Literal != lit {
			t.Fatalf("token %d literal = %q, want %q", i, toks[i].Literal, lit)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := lexer.All("fn // a trailing comment\n@x")
	if len(toks) != 3 { // FN, GLOBAL, EOF
		t.Fatalf("got %d tokens, want 3: %v", len(toks), toks)
	}
	if toks[0].Type != lexer.FN || toks[1].Type != lexer.GLOBAL {
		t.Fatalf("unexpected token sequence: %v", toks)
	}
}

func TestPositionTracksLineAndColumn(t *testing.T) {
	toks := lexer.All("fn\n@x")
	// toks[1] is @x, on line 2 at column 1.
	if toks[1].Pos.Line != 2 {
		t.Fatalf("@x position line = %d, want 2", toks[1].Pos.Line)
	}
	if toks[1].Pos.Column != 1 {
		t.Fatalf("@x position column = %d, want 1", toks[1].Pos.Column)
	}
}

func TestIllegalCharacterYieldsIllegalToken(t *testing.T) {
	toks := lexer.All("#")
	if toks[0].Type != lexer.ILLEGAL || toks[0].Literal != "#" {
		t.Fatalf("got %v, want ILLEGAL(#)", toks[0])
	}
}

func TestKeywordsAreNotIdentifiers(t *testing.T) {
	toks := lexer.All("specialize notakeyword")
	if toks[0].Type != lexer.SPECIALIZE {
		t.Fatalf("token 0 = %s, want SPECIALIZE", toks[0].Type)
	}
	if toks[1].Type != lexer.IDENT {
		t.Fatalf("token 1 = %s, want IDENT", toks[1].Type)
	}
}

func TestIntegerLiteral(t *testing.T) {
	toks := lexer.All("42")
	if toks[0].Type != lexer.INT || toks[0].Literal != "42" {
		t.Fatalf("got %v, want INT(42)", toks[0])
	}
}
