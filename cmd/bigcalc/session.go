package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/daios-ai/bigcalc/calc"
)

func red(s string) string  { return "\x1b[31;1m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

const helpText = `
REPL commands:
  :quit         Exit the REPL
  :help         Show this help
  :debug        Toggle token and bytecode listings before each result
  :explain <e>  Show how <e> is grouped, e.g. (10 - (3 - 2))
  :spew <e>     Dump the compiled chunk of <e>
  :config       Print the effective configuration
`

// session evaluates one line at a time and renders results and errors.
// Errors never end a session; the caller decides when to stop.
type session struct {
	eng    *calc.Engine
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger
	color  bool
	debug  bool
	name   string // source name used in error headers
}

func newSession(eng *calc.Engine, out, errOut io.Writer, log *slog.Logger) *session {
	cfg := eng.Config()
	return &session{
		eng:    eng,
		out:    out,
		errOut: errOut,
		log:    log,
		color:  cfg.Color,
		debug:  cfg.Debug,
	}
}

func (s *session) paint(f func(string) string, txt string) string {
	if !s.color {
		return txt
	}
	return f(txt)
}

func (s *session) reportErr(err error, src string) {
	err = calc.WrapErrorWithName(err, s.name, src)
	fmt.Fprintln(s.errOut, s.paint(red, strings.TrimRight(err.Error(), "\n")))
}

// eval evaluates one expression and prints the result. It reports whether
// evaluation succeeded.
func (s *session) eval(src string) bool {
	if s.debug {
		return s.evalDebug(src)
	}
	v, err := s.eng.Evaluate(src)
	if err != nil {
		s.log.Debug("evaluation failed", slog.String("input", src), slog.Any("error", err))
		s.reportErr(err, src)
		return false
	}
	fmt.Fprintln(s.out, v.String())
	return true
}

// evalDebug is eval with token and bytecode listings.
func (s *session) evalDebug(src string) bool {
	toks, err := calc.Tokenize(src)
	if err != nil {
		s.reportErr(err, src)
		return false
	}
	fmt.Fprintln(s.out, s.paint(blue, calc.DumpTokens(toks)))
	chunk, err := calc.ParseWithConfig(toks, s.eng.Config())
	if err != nil {
		s.reportErr(err, src)
		return false
	}
	fmt.Fprintf(s.out, "%d tokens read, %d instructions generated\n", toks.Len(), len(chunk.Code))
	fmt.Fprint(s.out, s.paint(blue, calc.Disassemble(chunk)))
	v, err := s.eng.Run(chunk)
	if err != nil {
		s.reportErr(err, src)
		return false
	}
	fmt.Fprintln(s.out, v.String())
	return true
}

// command handles a ":"-prefixed REPL command. quit is true for :quit.
func (s *session) command(line string) (quit bool) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprint(s.out, helpText)
	case ":debug":
		s.debug = !s.debug
		fmt.Fprintf(s.out, "debug listings %s\n", onOff(s.debug))
	case ":explain":
		chunk, err := s.eng.Compile(arg)
		if err != nil {
			s.reportErr(err, arg)
			return false
		}
		txt, err := calc.Decompile(chunk)
		if err != nil {
			s.reportErr(err, arg)
			return false
		}
		fmt.Fprintln(s.out, txt)
	case ":spew":
		chunk, err := s.eng.Compile(arg)
		if err != nil {
			s.reportErr(err, arg)
			return false
		}
		fmt.Fprint(s.out, calc.SpewChunk(chunk))
	case ":config":
		if err := calc.EncodeConfig(s.out, s.eng.Config()); err != nil {
			s.reportErr(err, "")
		}
	default:
		fmt.Fprintln(s.out, "unknown command. Type :help for a list, :quit to exit.")
	}
	return false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// handle dispatches one input line. Blank lines are ignored.
func (s *session) handle(line string) (ok, quit bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return true, false
	case strings.HasPrefix(trimmed, ":"):
		return true, s.command(trimmed)
	default:
		return s.eval(line), false
	}
}

// runLines evaluates every line of r and returns the number of failures.
func (s *session) runLines(r io.Reader) (failed int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		ok, quit := s.handle(sc.Text())
		if !ok {
			failed++
		}
		if quit {
			break
		}
	}
	return failed, sc.Err()
}
