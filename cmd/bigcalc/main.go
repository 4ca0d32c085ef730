package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/daios-ai/bigcalc/calc"
)

const (
	appName       = "bigcalc"
	defaultConfig = ".bigcalc.yaml"
)

var banner = fmt.Sprintf("bigcalc %s\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.", calc.Version)

func main() {
	args := os.Args[1:]
	cmd := "repl"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "repl":
		os.Exit(cmdRepl(args))
	case "eval":
		os.Exit(cmdEval(args))
	case "run":
		os.Exit(cmdRun(args))
	case "config":
		os.Exit(cmdConfig(args))
	case "version":
		fmt.Println(calc.Version)
		return
	case "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`bigcalc %s

Usage:
  %s [repl] [flags]              Start the interactive calculator.
  %s eval [flags] <expr>...      Evaluate expressions and print the results.
  %s run [flags] <file|->        Evaluate a file (or stdin) line by line.
  %s config [flags]              Print the effective configuration as YAML.
  %s version                     Print the version.

Flags:
  -config <path>   YAML config (default ~/%s when present)
  -debug           Print tokens and bytecode before each result
  -no-color        Disable ANSI colors
  -v               Verbose (debug) logging on stderr
`, calc.Version, appName, appName, appName, appName, appName, defaultConfig)
}

// -----------------------------------------------------------------------------
// shared setup
// -----------------------------------------------------------------------------

type options struct {
	configPath string
	debug      bool
	noColor    bool
	verbose    bool
}

func parseFlags(name string, args []string) (*options, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	o := &options{}
	fs.StringVar(&o.configPath, "config", "", "YAML config file")
	fs.BoolVar(&o.debug, "debug", false, "print tokens and bytecode")
	fs.BoolVar(&o.noColor, "no-color", false, "disable colors")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return o, fs.Args(), nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves the config file: explicit path first, then the file in
// the home directory if it exists, then built-in defaults.
func loadConfig(o *options) (calc.Config, error) {
	if o.configPath != "" {
		return calc.LoadConfig(o.configPath)
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, defaultConfig)
		if _, err := os.Stat(p); err == nil {
			return calc.LoadConfig(p)
		}
	}
	return calc.DefaultConfig(), nil
}

func setup(name string, args []string) (*session, []string, int) {
	o, rest, err := parseFlags(name, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %v\n", appName, name, err)
		return nil, nil, 2
	}
	log := newLogger(os.Stderr, o.verbose)
	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return nil, nil, 1
	}
	if o.debug {
		cfg.Debug = true
	}
	if o.noColor {
		cfg.Color = false
	}
	cfg.Logger = log
	eng, err := calc.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return nil, nil, 1
	}
	log.Debug("engine ready",
		slog.Int("max-consts", cfg.MaxConsts),
		slog.Int("max-stack", cfg.MaxStack),
		slog.Int("max-depth", cfg.MaxDepth))
	return newSession(eng, os.Stdout, os.Stderr, log), rest, 0
}

// -----------------------------------------------------------------------------
// eval / run / config
// -----------------------------------------------------------------------------

func cmdEval(args []string) int {
	s, exprs, code := setup("eval", args)
	if s == nil {
		return code
	}
	if len(exprs) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s eval <expr>...\n", appName)
		return 2
	}
	ret := 0
	for _, e := range exprs {
		if !s.eval(e) {
			ret = 1
		}
	}
	return ret
}

func cmdRun(args []string) int {
	s, rest, code := setup("run", args)
	if s == nil {
		return code
	}
	if len(rest) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file|->\n", appName)
		return 2
	}

	var r io.Reader = os.Stdin
	if rest[0] != "-" {
		f, err := os.Open(rest[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, rest[0], err)
			return 1
		}
		defer f.Close()
		r = f
		s.name = rest[0]
	}

	failed, err := s.runLines(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func cmdConfig(args []string) int {
	s, _, code := setup("config", args)
	if s == nil {
		return code
	}
	s.command(":config")
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(args []string) int {
	s, _, code := setup("repl", args)
	if s == nil {
		return code
	}
	cfg := s.eng.Config()
	fmt.Println(banner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.HistoryFile
	if histPath != "" && !filepath.IsAbs(histPath) {
		if home, err := os.UserHomeDir(); err == nil {
			histPath = filepath.Join(home, histPath)
		}
	}
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			} else {
				s.log.Debug("history not saved", slog.String("path", histPath), slog.Any("error", err))
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(cfg.Prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, s.paint(red, err.Error()))
			return 1
		}

		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if _, quit := s.handle(line); quit {
			return 0
		}
	}
}
