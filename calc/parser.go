// parser.go: recursive-descent compiler from tokens to bytecode.
//
// GRAMMAR
// -------
//
//	expr   := term   [ ("+" | "-") expr ]
//	term   := factor [ ("*" | "/" | "%") term ]
//	factor := atom   [ "^" factor ]
//	atom   := INTEGER | "(" expr ")"
//
// Every binary level is RIGHT-associative: after an operator, a production
// recurses into itself for the whole remaining right-hand side. So
//
//	10 - 3 - 2   compiles as   10 - (3 - 2)   = 9
//	64 / 4 / 2   compiles as   64 / (4 / 2)   = 32
//	2 ^ 3 ^ 2    compiles as   2 ^ (3 ^ 2)    = 512
//
// Callers used to the conventional left-associative reading of "-" and "/"
// should parenthesize.
//
// EMISSION
// --------
// Code is emitted in post-order: left operand, right operand, operator.
// An INTEGER becomes OpPushInt whose Arg indexes a fresh constant in the
// chunk's pool. Parentheses emit nothing. There is no unary minus; a leading
// "-" is a parse error.
package calc

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
)

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// ParseError is a grammar violation. Line is 1-based, Col is 0-based.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// Parse compiles a token list with the default configuration.
func Parse(toks *TokenList) (*Chunk, error) {
	return ParseWithConfig(toks, DefaultConfig())
}

// ParseWithConfig compiles a token list into a fresh chunk. The constant
// pool is bounded by cfg.MaxConsts; going over it is an error, not growth.
func ParseWithConfig(toks *TokenList, cfg Config) (*Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if toks == nil || len(toks.Toks) == 0 || toks.Toks[len(toks.Toks)-1].Type != END {
		return nil, &ParseError{Line: 1, Msg: "token list is not terminated by END"}
	}
	p := &parser{
		toks:  toks,
		cfg:   cfg,
		chunk: &Chunk{},
	}
	if err := p.program(); err != nil {
		return nil, err
	}
	log := cfg.logger()
	if log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("compiled",
			slog.Int("tokens", len(toks.Toks)),
			slog.Int("instructions", len(p.chunk.Code)),
			slog.Int("constants", len(p.chunk.Consts)))
	}
	return p.chunk, nil
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
///////////////////////////// PRIVATE IMPLEMENTATION ///////////////////////////
////////////////////////////////////////////////////////////////////////////////

type parser struct {
	toks  *TokenList
	i     int
	depth int
	cfg   Config
	chunk *Chunk
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) peek() Token {
	ts := p.toks.Toks
	if p.i >= len(ts) {
		return ts[len(ts)-1]
	}
	return ts[p.i]
}

func (p *parser) advance() Token {
	t := p.peek()
	if t.Type != END {
		p.i++
	}
	return t
}

func (p *parser) match(tt ...TokenType) (Token, bool) {
	t := p.peek()
	for _, want := range tt {
		if t.Type == want {
			p.i++
			return t, true
		}
	}
	return Token{}, false
}

func (p *parser) need(t TokenType, msg string) (Token, error) {
	if tok, ok := p.match(t); ok {
		return tok, nil
	}
	return Token{}, p.errAt(p.peek(), "%s, got %s", msg, p.describe(p.peek()))
}

func (p *parser) errAt(tok Token, format string, args ...any) error {
	return &ParseError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) describe(tok Token) string {
	if tok.Type == END {
		return "end of input"
	}
	return fmt.Sprintf("%s '%s'", tok.Type, p.toks.Text(tok))
}

func (p *parser) enter(tok Token) error {
	p.depth++
	if p.depth > p.cfg.MaxDepth {
		return p.errAt(tok, "expression nested too deeply (limit %d)", p.cfg.MaxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// ─────────────────────────────── emission ───────────────────────────────────

var binaryOps = map[TokenType]Opcode{
	PLUS:    OpAdd,
	MINUS:   OpSub,
	STAR:    OpMul,
	SLASH:   OpDiv,
	PERCENT: OpMod,
	CARET:   OpPow,
}

func (p *parser) emitOp(tok Token) error {
	op, ok := binaryOps[tok.Type]
	if !ok {
		return p.errAt(tok, "no operator for %s", tok.Type)
	}
	p.chunk.Code = append(p.chunk.Code, Instr{Op: op, Line: tok.Line, Col: tok.Col})
	return nil
}

func (p *parser) emitInt(tok Token) error {
	if len(p.chunk.Consts) >= p.cfg.MaxConsts {
		return p.errAt(tok, "too many literals in expression (limit %d)", p.cfg.MaxConsts)
	}
	v, ok := new(big.Int).SetString(p.toks.Text(tok), 10)
	if !ok {
		return p.errAt(tok, "invalid integer literal '%s'", p.toks.Text(tok))
	}
	idx := len(p.chunk.Consts)
	p.chunk.Consts = append(p.chunk.Consts, v)
	p.chunk.Code = append(p.chunk.Code, Instr{Op: OpPushInt, Arg: idx, Line: tok.Line, Col: tok.Col})
	return nil
}

// ─────────────────────────────── grammar ────────────────────────────────────

func (p *parser) program() error {
	if err := p.expr(); err != nil {
		return err
	}
	if t := p.peek(); t.Type != END {
		return p.errAt(t, "junk after expression: %s", p.describe(t))
	}
	return nil
}

// binary parses  operand [ op self ]  for one precedence level.
func (p *parser) binary(operand, self func() error, ops ...TokenType) error {
	if err := p.enter(p.peek()); err != nil {
		return err
	}
	defer p.leave()

	if err := operand(); err != nil {
		return err
	}
	op, ok := p.match(ops...)
	if !ok {
		return nil
	}
	if err := self(); err != nil {
		return err
	}
	return p.emitOp(op)
}

func (p *parser) expr() error {
	return p.binary(p.term, p.expr, PLUS, MINUS)
}

func (p *parser) term() error {
	return p.binary(p.factor, p.term, STAR, SLASH, PERCENT)
}

func (p *parser) factor() error {
	return p.binary(p.atom, p.factor, CARET)
}

func (p *parser) atom() error {
	t := p.peek()
	switch t.Type {
	case INTEGER:
		p.advance()
		return p.emitInt(t)
	case LROUND:
		p.advance()
		if err := p.expr(); err != nil {
			return err
		}
		_, err := p.need(RROUND, fmt.Sprintf("expected ')' to close '(' at %d:%d", t.Line, t.Col+1))
		return err
	case END:
		return p.errAt(t, "unexpected end of input, expected integer or '('")
	default:
		return p.errAt(t, "unexpected token %s, expected integer or '('", p.describe(t))
	}
}
