// Package calc evaluates integer arithmetic expressions with arbitrary
// precision.
//
// The pipeline is Lexer → Parser (compiler) → VM:
//
//	toks, _  := calc.Tokenize("2 ^ 3 ^ 2")
//	chunk, _ := calc.Parse(toks)
//	v, _     := calc.Run(chunk)   // 512
//
// Evaluate runs all three stages. Operators are + - * / % ^ with the usual
// precedence, but every level is right-associative: "10 - 3 - 2" is 9.
// Division floors, modulo is Euclidean (never negative).
//
// Nothing in this package keeps state between calls; an Engine may be shared
// by any number of goroutines.
package calc

import (
	"math/big"
)

// Version of the calculator core.
const Version = "0.3.0"

// Engine evaluates expressions under one Config.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine bound to cfg after validating it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Compile lexes and parses text into a fresh chunk.
func (e *Engine) Compile(text string) (*Chunk, error) {
	toks, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	return ParseWithConfig(toks, e.cfg)
}

// Run executes a compiled chunk.
func (e *Engine) Run(chunk *Chunk) (*big.Int, error) {
	return RunWithConfig(chunk, e.cfg)
}

// Evaluate compiles and runs one expression. The error, if any, is a
// *LexError, *ParseError or *InterpreterError (see WrapErrorWithSource).
func (e *Engine) Evaluate(text string) (*big.Int, error) {
	chunk, err := e.Compile(text)
	if err != nil {
		return nil, err
	}
	return e.Run(chunk)
}

var defaultEngine = &Engine{cfg: DefaultConfig()}

// Evaluate compiles and runs text with the default limits.
func Evaluate(text string) (*big.Int, error) {
	return defaultEngine.Evaluate(text)
}
