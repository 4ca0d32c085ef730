// printer.go
package calc

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

/* ---------- listings ---------- */

// DumpTokens renders a token list as "(TYPE: text), " pairs, END included.
func DumpTokens(toks *TokenList) string {
	var b strings.Builder
	for _, t := range toks.Toks {
		fmt.Fprintf(&b, "(%s: %s), ", t.Type, toks.Text(t))
	}
	return strings.TrimSuffix(b.String(), " ")
}

// Disassemble renders a chunk one instruction per line:
//
//	0000  OP_PUSH_INTEGER  #0 = 10
//	0001  OP_SUB
func Disassemble(chunk *Chunk) string {
	var b strings.Builder
	for i, in := range chunk.Code {
		if in.Op == OpPushInt {
			val := "?"
			if in.Arg >= 0 && in.Arg < len(chunk.Consts) {
				val = chunk.Consts[in.Arg].String()
			}
			fmt.Fprintf(&b, "%04d  %-16s #%d = %s\n", i, in.Op, in.Arg, val)
			continue
		}
		fmt.Fprintf(&b, "%04d  %s\n", i, in.Op)
	}
	return b.String()
}

// Decompile rebuilds a fully parenthesized infix form of chunk, which makes
// the grouping chosen by the parser explicit: "10 - 3 - 2" comes back as
// "(10 - (3 - 2))".
func Decompile(chunk *Chunk) (string, error) {
	var stack []string
	for _, in := range chunk.Code {
		if in.Op == OpPushInt {
			if in.Arg < 0 || in.Arg >= len(chunk.Consts) {
				return "", &InterpreterError{Line: in.Line, Col: in.Col, Msg: fmt.Sprintf("constant index %d out of range", in.Arg)}
			}
			stack = append(stack, chunk.Consts[in.Arg].String())
			continue
		}
		sym, ok := opSymbols[in.Op]
		if !ok {
			return "", &InterpreterError{Line: in.Line, Col: in.Col, Msg: fmt.Sprintf("unknown opcode '%d'", uint8(in.Op))}
		}
		n := len(stack)
		if n < 2 {
			return "", &InterpreterError{Line: in.Line, Col: in.Col, Msg: "stack underflow in " + in.Op.String()}
		}
		stack = append(stack[:n-2], "("+stack[n-2]+" "+sym+" "+stack[n-1]+")")
	}
	if len(stack) != 1 {
		return "", &InterpreterError{Msg: fmt.Sprintf("malformed program: %d values left on stack, want 1", len(stack))}
	}
	return stack[0], nil
}

var opSymbols = map[Opcode]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpPow: "^",
}

/* ---------- structural dumps ---------- */

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// SpewChunk returns a go-spew structural dump of chunk.
func SpewChunk(chunk *Chunk) string {
	return spewConfig.Sdump(chunk)
}

// SpewTokens returns a go-spew structural dump of a token list.
func SpewTokens(toks *TokenList) string {
	return spewConfig.Sdump(toks)
}
