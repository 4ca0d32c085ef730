// errors.go: user-facing error wrapping and caret-snippet rendering
//
// The three pipeline stages fail with distinct types:
//
//	*LexError          (lexer.go)   a byte that starts no token
//	*ParseError        (parser.go)  unexpected token, missing ')', junk, limits
//	*InterpreterError  (vm.go)      arithmetic domain errors, malformed code
//
// WrapErrorWithSource turns any of them into a snippet with a caret under the
// offending column:
//
//	PARSE ERROR at 1:7: junk after expression: RROUND ')'
//
//	   1 | 1 + 2 ) * 3
//	     |       ^
//
// Other errors pass through unchanged. The returned error still unwraps to
// the underlying error, so errors.As keeps working on wrapped values.
package calc

import (
	"errors"
	"fmt"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// SourceError is a pipeline error rendered against its source text.
type SourceError struct {
	Err     error
	Snippet string
}

func (e *SourceError) Error() string { return e.Snippet }
func (e *SourceError) Unwrap() error { return e.Err }

// WrapErrorWithSource returns err augmented with a caret-annotated snippet of
// src when err is a lexer, parser or interpreter error.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name in the header.
func WrapErrorWithName(err error, srcName string, src string) error {
	var (
		le *LexError
		pe *ParseError
		ie *InterpreterError
	)
	switch {
	case errors.As(err, &le):
		// Lex/parse/interp Col are 0-based; render as 1-based.
		return &SourceError{Err: err, Snippet: prettyErrorStringLabeled(src, "LEXICAL ERROR", srcName, le.Line, le.Col+1, le.Msg)}
	case errors.As(err, &pe):
		return &SourceError{Err: err, Snippet: prettyErrorStringLabeled(src, "PARSE ERROR", srcName, pe.Line, pe.Col+1, pe.Msg)}
	case errors.As(err, &ie):
		if ie.Line <= 0 {
			return err
		}
		return &SourceError{Err: err, Snippet: prettyErrorStringLabeled(src, "INTERPRETER ERROR", srcName, ie.Line, ie.Col+1, ie.Msg)}
	default:
		return err
	}
}

// IsLexError reports whether err is (or wraps) a *LexError.
func IsLexError(err error) bool {
	var e *LexError
	return errors.As(err, &e)
}

// IsParseError reports whether err is (or wraps) a *ParseError.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// IsInterpreterError reports whether err is (or wraps) an *InterpreterError.
func IsInterpreterError(err error) bool {
	var e *InterpreterError
	return errors.As(err, &e)
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: rendering
   =========================== */

// prettyErrorStringLabeled builds a snippet with a header and a caret.
// It shows at most one previous and one next line when available.
// Coordinates are 1-based and clamped to the source bounds.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
