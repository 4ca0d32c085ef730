// lexer.go
package calc

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	END TokenType = iota

	// Literals
	INTEGER

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	CARET

	// Punctuation
	LROUND // "("
	RROUND // ")"
)

var tokenNames = [...]string{
	END:     "END",
	INTEGER: "INTEGER",
	PLUS:    "PLUS",
	MINUS:   "MINUS",
	STAR:    "STAR",
	SLASH:   "SLASH",
	PERCENT: "PERCENT",
	CARET:   "CARET",
	LROUND:  "LROUND",
	RROUND:  "RROUND",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexical token. Start/End are byte offsets into the owning
// TokenList's Src; tokens never hold text of their own.
type Token struct {
	Type  TokenType
	Start int
	End   int
	Line  int // 1-based
	Col   int // 0-based column within line
}

// TokenList is the result of a scan. Src is the lexer's private copy of the
// input; every token span points into it. The last token is always END.
type TokenList struct {
	Src  string
	Toks []Token
}

// Text returns the lexeme of tok.
func (tl *TokenList) Text(tok Token) string { return tl.Src[tok.Start:tok.End] }

// Len reports the number of tokens, END included.
func (tl *TokenList) Len() int { return len(tl.Toks) }

// Lexer scans an expression string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  strings.Clone(src), // tokens borrow from this copy, never the caller's
		line: 1,
		col:  0,
	}
}

// Tokenize is shorthand for NewLexer(src).Scan().
func Tokenize(src string) (*TokenList, error) {
	return NewLexer(src).Scan()
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) addToken(tt TokenType) Token {
	tok := Token{
		Type:  tt,
		Start: l.start,
		End:   l.cur,
		Line:  l.tokStartLine,
		Col:   l.tokStartCol,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

// skipWhitespace eats blanks; NUL counts as one.
func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t', 0:
			l.advance()
			l.start = l.cur
		default:
			return
		}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// ----- errors -----

// LexError reports a byte that cannot start any token.
// Line is 1-based, Col is 0-based.
type LexError struct {
	Line int
	Col  int
	Char rune
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

func (l *Lexer) errUnexpected() error {
	r, _ := utf8.DecodeRuneInString(l.src[l.start:])
	return &LexError{
		Line: l.tokStartLine,
		Col:  l.tokStartCol,
		Char: r,
		Msg:  fmt.Sprintf("unexpected character %q in expression at line %d", r, l.tokStartLine),
	}
}

// ----- scanners -----

// scanNumber consumes the rest of a maximal run of decimal digits.
// Signs, decimal points and exponents are not part of the lexicon.
func (l *Lexer) scanNumber() {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			return
		}
		l.advance()
	}
}

func (l *Lexer) scanToken() (Token, error) {
	l.skipWhitespace()
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		return l.addToken(END), nil
	}

	ch, _ := l.advance()
	switch ch {
	case '+':
		return l.addToken(PLUS), nil
	case '-':
		return l.addToken(MINUS), nil
	case '*':
		return l.addToken(STAR), nil
	case '/':
		return l.addToken(SLASH), nil
	case '%':
		return l.addToken(PERCENT), nil
	case '^':
		return l.addToken(CARET), nil
	case '(':
		return l.addToken(LROUND), nil
	case ')':
		return l.addToken(RROUND), nil
	}

	if isDigit(ch) {
		l.scanNumber()
		return l.addToken(INTEGER), nil
	}

	return Token{}, l.errUnexpected()
}

// Scan tokenizes the entire source and returns tokens (END included).
func (l *Lexer) Scan() (*TokenList, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == END {
			return &TokenList{Src: l.src, Toks: l.tokens}, nil
		}
	}
}
