// vm.go
package calc

// A minimal stack VM over arbitrary-precision integers.
// - Goroutine-safe (no package-level mutability): every run owns its stack.
// - Chunks are never written to while running; constants are copied on push.

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
)

// -----------------------------
// Instruction encoding
// -----------------------------

// Opcode names one VM operation.
type Opcode uint8

const (
	OpAdd Opcode = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpPushInt // push copy of Consts[Arg]
)

var opcodeNames = [...]string{
	OpAdd:     "OP_ADD",
	OpSub:     "OP_SUB",
	OpMul:     "OP_MUL",
	OpDiv:     "OP_DIV",
	OpMod:     "OP_MOD",
	OpPow:     "OP_POW",
	OpPushInt: "OP_PUSH_INTEGER",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP_UNKNOWN(%d)", uint8(op))
}

// Instr is one instruction. Arg is meaningful only for OpPushInt.
// Line/Col locate the source token that produced it (1-based line,
// 0-based column) and feed runtime error snippets.
type Instr struct {
	Op   Opcode
	Arg  int
	Line int
	Col  int
}

// -----------------------------
// Bytecode container
// -----------------------------

// Chunk is a compiled expression: code plus its constant pool.
type Chunk struct {
	Code   []Instr
	Consts []*big.Int
}

// -----------------------------
// Errors
// -----------------------------

// InterpreterError represents an execution-time failure. Line/Col point at
// the operator that failed when known (Line 0 means no position).
type InterpreterError struct {
	Line int
	Col  int
	Msg  string
}

func (e *InterpreterError) Error() string {
	if e.Line <= 0 {
		return "INTERPRETER ERROR: " + e.Msg
	}
	return fmt.Sprintf("INTERPRETER ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// -----------------------------
// VM machine
// -----------------------------

type vm struct {
	chunk *Chunk
	cfg   Config
	log   *slog.Logger
	stack []*big.Int
	iptr  int
}

func (m *vm) failAt(in Instr, format string, args ...any) error {
	return &InterpreterError{Line: in.Line, Col: in.Col, Msg: fmt.Sprintf(format, args...)}
}

func (m *vm) push(in Instr, v *big.Int) error {
	if len(m.stack) >= m.cfg.MaxStack {
		return m.failAt(in, "stack overflow (limit %d)", m.cfg.MaxStack)
	}
	m.stack = append(m.stack, v)
	return nil
}

// pop2 returns (left, right); right was pushed last.
func (m *vm) pop2(in Instr) (*big.Int, *big.Int, error) {
	n := len(m.stack)
	if n < 2 {
		return nil, nil, m.failAt(in, "stack underflow in %s", in.Op)
	}
	a, b := m.stack[n-2], m.stack[n-1]
	m.stack = m.stack[:n-2]
	return a, b, nil
}

// -----------------------------
// Arithmetic
// -----------------------------

// binInt applies op to (a, b). a and b are owned by the VM and may be reused
// as the result.
func (m *vm) binInt(in Instr, a, b *big.Int) (*big.Int, error) {
	switch in.Op {
	case OpAdd:
		return a.Add(a, b), nil
	case OpSub:
		return a.Sub(a, b), nil
	case OpMul:
		return a.Mul(a, b), nil
	case OpDiv:
		if b.Sign() == 0 {
			return nil, m.failAt(in, "division by zero")
		}
		return floorDiv(a, b), nil
	case OpMod:
		if b.Sign() == 0 {
			return nil, m.failAt(in, "modulo by zero")
		}
		// Euclidean: result is always in [0, |b|).
		return a.Mod(a, b), nil
	case OpPow:
		if b.Sign() < 0 {
			return nil, m.failAt(in, "negative exponent %s", b.String())
		}
		if !b.IsUint64() {
			return nil, m.failAt(in, "exponent %s does not fit in 64 bits", b.String())
		}
		exp := b.Uint64()
		if err := m.checkPowSize(in, a, exp); err != nil {
			return nil, err
		}
		return a.Exp(a, b, nil), nil
	}
	return nil, m.failAt(in, "unknown opcode '%d'", uint8(in.Op))
}

// floorDiv returns floor(a/b), reusing a. b must be non-zero.
func floorDiv(a, b *big.Int) *big.Int {
	r := new(big.Int)
	a.QuoRem(a, b, r)
	if r.Sign() != 0 && r.Sign() != b.Sign() {
		a.Sub(a, big.NewInt(1))
	}
	return a
}

// checkPowSize rejects powers whose result would exceed MaxResultBits.
// Bases 0, 1 and -1 never grow.
func (m *vm) checkPowSize(in Instr, base *big.Int, exp uint64) error {
	if exp == 0 || base.CmpAbs(big.NewInt(1)) <= 0 {
		return nil
	}
	bits := uint64(base.BitLen() - 1) // floor(log2 |base|)
	if bits == 0 {
		bits = 1 // |base| in [2,3] still at least doubles per step
	}
	limit := uint64(m.cfg.MaxResultBits)
	if exp > limit || bits*exp > limit {
		return m.failAt(in, "result of power too large (over %d bits)", m.cfg.MaxResultBits)
	}
	return nil
}

// -----------------------------
// VM runner
// -----------------------------

// Run executes chunk with the default configuration.
func Run(chunk *Chunk) (*big.Int, error) {
	return RunWithConfig(chunk, DefaultConfig())
}

// RunWithConfig executes chunk and returns the single value left on the
// stack. Any other final depth is reported as a malformed program.
func RunWithConfig(chunk *Chunk, cfg Config) (*big.Int, error) {
	if chunk == nil {
		return nil, &InterpreterError{Msg: "nil chunk"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &vm{
		chunk: chunk,
		cfg:   cfg,
		log:   cfg.logger(),
		stack: make([]*big.Int, 0, min(cfg.MaxStack, len(chunk.Consts))),
	}
	return m.run()
}

func (m *vm) run() (*big.Int, error) {
	code := m.chunk.Code
	consts := m.chunk.Consts

	for m.iptr < len(code) {
		in := code[m.iptr]
		m.iptr++

		switch in.Op {
		case OpPushInt:
			if in.Arg < 0 || in.Arg >= len(consts) {
				return nil, m.failAt(in, "constant index %d out of range", in.Arg)
			}
			if err := m.push(in, new(big.Int).Set(consts[in.Arg])); err != nil {
				return nil, err
			}

		case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow:
			a, b, err := m.pop2(in)
			if err != nil {
				return nil, err
			}
			out, err := m.binInt(in, a, b)
			if err != nil {
				return nil, err
			}
			if err := m.push(in, out); err != nil {
				return nil, err
			}

		default:
			return nil, m.failAt(in, "unknown opcode '%d'", uint8(in.Op))
		}

		if m.log.Enabled(context.Background(), slog.LevelDebug) {
			m.log.Debug("vm step",
				slog.Int("ip", m.iptr-1),
				slog.String("op", in.Op.String()),
				slog.Int("stack-size", len(m.stack)))
		}
	}

	if len(m.stack) != 1 {
		return nil, &InterpreterError{Msg: fmt.Sprintf("malformed program: %d values left on stack, want 1", len(m.stack))}
	}
	return m.stack[0], nil
}
