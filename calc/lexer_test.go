// lexer_test.go
package calc

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func toks(t *testing.T, src string) *TokenList {
	t.Helper()
	tl, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	return tl
}

func typesWithoutEND(tl *TokenList) []TokenType {
	out := []TokenType{}
	for _, tok := range tl.Toks {
		if tok.Type == END {
			break
		}
		out = append(out, tok.Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) *TokenList {
	t.Helper()
	got := toks(t, src)
	gotTypes := typesWithoutEND(got)
	if !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%q\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func mustLexError(t *testing.T, src string) *LexError {
	t.Helper()
	_, err := Tokenize(src)
	if err == nil {
		t.Fatalf("expected lex error for %q, got nil", src)
	}
	var le *LexError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LexError for %q, got %T: %v", src, err, err)
	}
	return le
}

func Test_Lexer_EndIsAlwaysLast(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\n", "1", "(1+2)"} {
		tl := toks(t, src)
		if len(tl.Toks) == 0 {
			t.Fatalf("%q: no tokens", src)
		}
		ends := 0
		for _, tok := range tl.Toks {
			if tok.Type == END {
				ends++
			}
		}
		if ends != 1 || tl.Toks[len(tl.Toks)-1].Type != END {
			t.Fatalf("%q: want exactly one trailing END, got %v", src, tl.Toks)
		}
	}
}

func Test_Lexer_EmptyInput_OnlyEND(t *testing.T) {
	tl := toks(t, "")
	if tl.Len() != 1 || tl.Toks[0].Type != END {
		t.Fatalf("want [END], got %v", tl.Toks)
	}
}

func Test_Lexer_DigitRuns_AreSingleIntegers(t *testing.T) {
	digits := "98765432109876543210"
	for n := 1; n <= 200; n++ {
		src := strings.Repeat(digits, n/len(digits)+1)[:n]
		tl := wantTypes(t, src, []TokenType{INTEGER})
		tok := tl.Toks[0]
		if tok.Start != 0 || tok.End != n {
			t.Fatalf("len %d: span = [%d,%d), want [0,%d)", n, tok.Start, tok.End, n)
		}
		if tl.Text(tok) != src {
			t.Fatalf("len %d: text = %q", n, tl.Text(tok))
		}
	}
}

func Test_Lexer_Operators_And_Parens(t *testing.T) {
	wantTypes(t, "+-*/%^()", []TokenType{
		PLUS, MINUS, STAR, SLASH, PERCENT, CARET, LROUND, RROUND,
	})
}

func Test_Lexer_Expression_Spans(t *testing.T) {
	tl := wantTypes(t, "(12+345)*6", []TokenType{
		LROUND, INTEGER, PLUS, INTEGER, RROUND, STAR, INTEGER,
	})
	var texts []string
	for _, tok := range tl.Toks {
		texts = append(texts, tl.Text(tok))
	}
	want := []string{"(", "12", "+", "345", ")", "*", "6", ""}
	if !reflect.DeepEqual(texts, want) {
		t.Fatalf("texts = %q, want %q", texts, want)
	}
}

func Test_Lexer_Whitespace_And_Lines(t *testing.T) {
	tl := wantTypes(t, " 1 \t+\r\n  2\x00", []TokenType{INTEGER, PLUS, INTEGER})
	if tl.Toks[0].Line != 1 || tl.Toks[2].Line != 2 {
		t.Fatalf("lines = %d, %d; want 1, 2", tl.Toks[0].Line, tl.Toks[2].Line)
	}
	if tl.Toks[2].Col != 2 {
		t.Fatalf("col of second integer = %d, want 2", tl.Toks[2].Col)
	}
}

func Test_Lexer_MinusIsAlwaysAnOperator(t *testing.T) {
	wantTypes(t, "-3", []TokenType{MINUS, INTEGER})
}

func Test_Lexer_Error_BadCharacter(t *testing.T) {
	le := mustLexError(t, "1 + a")
	if le.Char != 'a' || le.Line != 1 || le.Col != 4 {
		t.Fatalf("got char=%q line=%d col=%d", le.Char, le.Line, le.Col)
	}
	if !strings.Contains(le.Msg, "'a'") || !strings.Contains(le.Msg, "line 1") {
		t.Fatalf("message should name the character and line: %q", le.Msg)
	}
}

func Test_Lexer_Error_LineNumberCountsNewlines(t *testing.T) {
	le := mustLexError(t, "1 +\n2 $ 3")
	if le.Char != '$' || le.Line != 2 || le.Col != 2 {
		t.Fatalf("got char=%q line=%d col=%d", le.Char, le.Line, le.Col)
	}
	if !strings.Contains(le.Error(), "LEXICAL ERROR at 2:3") {
		t.Fatalf("Error() = %q", le.Error())
	}
}

func Test_Lexer_Error_UnsupportedNumberSyntax(t *testing.T) {
	for _, tc := range []struct {
		src  string
		char rune
	}{
		{"1.5", '.'},
		{"1e3", 'e'},
		{"x", 'x'},
		{"2 ÷ 3", '÷'},
	} {
		le := mustLexError(t, tc.src)
		if le.Char != tc.char {
			t.Errorf("%q: char = %q, want %q", tc.src, le.Char, tc.char)
		}
	}
}

func Test_Lexer_PrivateCopy(t *testing.T) {
	buf := []byte("41 + 1")
	tl := toks(t, string(buf))
	buf[0] = '9'
	if got := tl.Text(tl.Toks[0]); got != "41" {
		t.Fatalf("token text changed with caller buffer: %q", got)
	}
}
