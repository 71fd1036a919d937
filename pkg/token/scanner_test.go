package token

import (
	"errors"
	"strings"
	"testing"
)

// scanAll scans tokens until the end of the input, failing the test on any
// scan error.
func scanAll(t *testing.T, input string) []Token {
	t.Helper()

	scanner := NewScanner(strings.NewReader(input))
	var tokens []Token
	for {
		scanned, err := scanner.ScanToken()
		if err != nil {
			t.Fatalf("scan error: %v", err)
		}
		if scanned == nil {
			return tokens
		}
		tokens = append(tokens, scanned)
	}
}

func expectTokens(t *testing.T, input string, expected []Token) {
	t.Helper()

	tokens := scanAll(t, input)
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, tok := range tokens {
		if tok != expected[i] {
			t.Errorf("tokens[%d]: expected %v, got %v", i, expected[i], tok)
		}
	}
}

func TestScanTokenSequence(t *testing.T) {
	input := `int main() { print 1 + 2; return 0; }`

	expectTokens(t, input, []Token{
		Int,
		Identifier{Name: "main"},
		ParenLeft,
		ParenRight,
		CurlyLeft,
		Print,
		IntegerLiteral{Value: 1},
		Plus,
		IntegerLiteral{Value: 2},
		Semicolon,
		Return,
		IntegerLiteral{Value: 0},
		Semicolon,
		CurlyRight,
	})
}

func TestOperatorsAndSeparators(t *testing.T) {
	input := `+ - * / % = == != < > <= >= , ; ( ) { }`

	expectTokens(t, input, []Token{
		Plus, Minus, Star, Slash, Percent,
		Equal, DoubleEqual, NotEqual,
		Less, Greater, LessEqual, GreaterEqual,
		Comma, Semicolon, ParenLeft, ParenRight, CurlyLeft, CurlyRight,
	})
}

func TestMaximalMunch(t *testing.T) {
	// "===" must munch "==" first, then "="
	expectTokens(t, "===", []Token{DoubleEqual, Equal})
	expectTokens(t, "<=>=!=", []Token{LessEqual, GreaterEqual, NotEqual})
	expectTokens(t, "a==b", []Token{Identifier{Name: "a"}, DoubleEqual, Identifier{Name: "b"}})
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	input := `int print if else while return foo _bar x1 printx`

	expectTokens(t, input, []Token{
		Int, Print, If, Else, While, Return,
		Identifier{Name: "foo"},
		Identifier{Name: "_bar"},
		Identifier{Name: "x1"},
		Identifier{Name: "printx"},
	})
}

func TestIntegerLiterals(t *testing.T) {
	expectTokens(t, "0 42 007", []Token{
		IntegerLiteral{Value: 0},
		IntegerLiteral{Value: 42},
		IntegerLiteral{Value: 7},
	})

	// A non-digit character ends the literal and starts the next token
	expectTokens(t, "12abc", []Token{
		IntegerLiteral{Value: 12},
		Identifier{Name: "abc"},
	})
}

func TestLineComments(t *testing.T) {
	input := `int // trailing comment
// a full-line comment, with = tokens < inside
main`

	expectTokens(t, input, []Token{
		Int,
		Identifier{Name: "main"},
	})
}

func TestUnexpectedCharacter(t *testing.T) {
	scanner := NewScanner(strings.NewReader("@"))
	if _, err := scanner.ScanToken(); err == nil {
		t.Fatal("expected an error for an unexpected character")
	} else if !strings.Contains(err.Error(), "unexpected character") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestEndOfInput(t *testing.T) {
	scanner := NewScanner(strings.NewReader("  \t\n"))

	if tok := scanner.GetToken(); tok != nil {
		t.Errorf("GetToken before first scan: expected nil, got %v", tok)
	}

	scanned, err := scanner.ScanToken()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if scanned != nil {
		t.Errorf("expected nil token at end of input, got %v", scanned)
	}

	if _, err := scanner.ExpectToken(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestPutBack(t *testing.T) {
	scanner := NewScanner(strings.NewReader("b"))

	// nextChar after putBack(x) must return x
	scanner.putBack('a')
	c, ok, err := scanner.nextChar()
	if err != nil || !ok {
		t.Fatalf("nextChar failed: ok=%v err=%v", ok, err)
	}
	if c != 'a' {
		t.Errorf("expected put-back character 'a', got %q", c)
	}

	// The underlying source resumes once the stack is empty
	c, ok, err = scanner.nextChar()
	if err != nil || !ok {
		t.Fatalf("nextChar failed: ok=%v err=%v", ok, err)
	}
	if c != 'b' {
		t.Errorf("expected source character 'b', got %q", c)
	}
}

func TestScannerLookahead(t *testing.T) {
	scanner := NewScanner(strings.NewReader("1 2"))

	first, err := scanner.ScanToken()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	// GetToken must return the current token without advancing
	if scanner.GetToken() != first {
		t.Error("GetToken disagrees with the token just scanned")
	}
	if scanner.GetToken() != first {
		t.Error("GetToken advanced the scanner")
	}

	second, err := scanner.ScanToken()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if second != (IntegerLiteral{Value: 2}) {
		t.Errorf("expected (integer 2), got %v", second)
	}
}
