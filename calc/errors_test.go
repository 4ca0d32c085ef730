package calc

import (
	"strings"
	"testing"
)

func mustContain(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Fatalf("expected output to contain %q\n--- output ---\n%s", sub, s)
	}
}

func wrapped(t *testing.T, src string) string {
	t.Helper()
	_, err := Evaluate(src)
	if err == nil {
		t.Fatalf("expected error for %q", src)
	}
	return WrapErrorWithSource(err, src).Error()
}

func Test_ErrorWrap_Parse_ShowsCaret(t *testing.T) {
	msg := wrapped(t, "1 + 2) * 3")
	mustContain(t, msg, "PARSE ERROR at 1:6: junk after expression")
	mustContain(t, msg, "   1 | 1 + 2) * 3")
	mustContain(t, msg, "     | "+strings.Repeat(" ", 5)+"^")
}

func Test_ErrorWrap_Lex_ShowsContext(t *testing.T) {
	msg := wrapped(t, "1 +\n2 $ 3\n+ 4")
	mustContain(t, msg, "LEXICAL ERROR at 2:3")
	mustContain(t, msg, "   1 | 1 +")
	mustContain(t, msg, "   2 | 2 $ 3")
	mustContain(t, msg, "   3 | + 4")
	mustContain(t, msg, "     |   ^")
}

func Test_ErrorWrap_Interpreter_PointsAtOperator(t *testing.T) {
	msg := wrapped(t, "5 / 0")
	mustContain(t, msg, "INTERPRETER ERROR at 1:3: division by zero")
	mustContain(t, msg, "     |   ^")
}

func Test_ErrorWrap_WithName(t *testing.T) {
	_, err := Evaluate("(1")
	msg := WrapErrorWithName(err, "input.txt", "(1").Error()
	mustContain(t, msg, "PARSE ERROR in input.txt at 1:3")
}

func Test_ErrorWrap_KeepsKind(t *testing.T) {
	_, err := Evaluate("7 % 0")
	w := WrapErrorWithSource(err, "7 % 0")
	if !IsInterpreterError(w) || IsParseError(w) || IsLexError(w) {
		t.Fatalf("wrapped error lost its kind: %T", w)
	}
}

func Test_ErrorWrap_PassThrough(t *testing.T) {
	// Malformed programs have no source position.
	_, err := Run(&Chunk{})
	if w := WrapErrorWithSource(err, "whatever"); w != err {
		t.Fatalf("positionless error should pass through, got %v", w)
	}
	if WrapErrorWithSource(nil, "x") != nil {
		t.Fatalf("nil should stay nil")
	}
}
