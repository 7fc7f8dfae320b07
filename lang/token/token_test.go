package token

import "testing"

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		if tok.String() == "" {
			t.Errorf("missing string representation of token %d", tok)
		}
	}
}

func TestGoString(t *testing.T) {
	if got := PLUS.GoString(); got != "'+'" {
		t.Errorf("PLUS.GoString() = %q, want '+'", got)
	}
	if got := IDENT.GoString(); got != "identifier" {
		t.Errorf("IDENT.GoString() = %q, want identifier", got)
	}
}

func TestKeywords(t *testing.T) {
	for word, tok := range Keywords {
		if tok.String() != word {
			t.Errorf("keyword %q maps to token %s, want matching name", word, tok)
		}
	}
}

func TestLiteral(t *testing.T) {
	if got := IDENT.Literal(); got != "" {
		t.Errorf("IDENT.Literal() = %q, want empty", got)
	}
	if got := PLUS.Literal(); got != "+" {
		t.Errorf("PLUS.Literal() = %q, want +", got)
	}
}
