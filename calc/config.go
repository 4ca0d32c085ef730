// config.go
package calc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Limits and shell settings. The zero value is not usable; start from
// DefaultConfig() or LoadConfig().
type Config struct {
	// MaxConsts bounds the constant pool of one compilation.
	MaxConsts int
	// MaxStack bounds the value stack of one run.
	MaxStack int
	// MaxDepth bounds parser recursion (nesting and operator chains).
	MaxDepth int
	// MaxResultBits bounds the estimated size of a single power result.
	MaxResultBits int

	// Shell settings; the core ignores them.
	Prompt      string
	HistoryFile string
	Color       bool
	Debug       bool

	// Logger receives debug records from the compiler and VM. Nil discards.
	Logger *slog.Logger
}

const (
	DefaultMaxConsts     = 128
	DefaultMaxStack      = 128
	DefaultMaxDepth      = 10000
	DefaultMaxResultBits = 1 << 24
	DefaultPrompt        = ">> "
	DefaultHistoryFile   = ".bigcalc_history"
)

// DefaultConfig returns the built-in limits.
func DefaultConfig() Config {
	return Config{
		MaxConsts:     DefaultMaxConsts,
		MaxStack:      DefaultMaxStack,
		MaxDepth:      DefaultMaxDepth,
		MaxResultBits: DefaultMaxResultBits,
		Prompt:        DefaultPrompt,
		HistoryFile:   DefaultHistoryFile,
		Color:         true,
	}
}

// configDisk mirrors the YAML file. Pointers distinguish "absent" from zero.
type configDisk struct {
	MaxConsts     *int    `yaml:"max_consts"`
	MaxStack      *int    `yaml:"max_stack"`
	MaxDepth      *int    `yaml:"max_depth"`
	MaxResultBits *int    `yaml:"max_result_bits"`
	Prompt        *string `yaml:"prompt"`
	HistoryFile   *string `yaml:"history_file"`
	Color         *bool   `yaml:"color"`
	Debug         *bool   `yaml:"debug"`
}

// LoadConfig reads a YAML config file and overlays it on DefaultConfig().
// Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	cfg, err := DecodeConfig(file)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	return cfg, nil
}

// DecodeConfig parses YAML from r. An empty document yields the defaults.
func DecodeConfig(r io.Reader) (Config, error) {
	var raw configDisk
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	cfg := raw.toConfig()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (d configDisk) toConfig() Config {
	cfg := DefaultConfig()
	if d.MaxConsts != nil {
		cfg.MaxConsts = *d.MaxConsts
	}
	if d.MaxStack != nil {
		cfg.MaxStack = *d.MaxStack
	}
	if d.MaxDepth != nil {
		cfg.MaxDepth = *d.MaxDepth
	}
	if d.MaxResultBits != nil {
		cfg.MaxResultBits = *d.MaxResultBits
	}
	if d.Prompt != nil {
		cfg.Prompt = *d.Prompt
	}
	if d.HistoryFile != nil {
		cfg.HistoryFile = strings.TrimSpace(*d.HistoryFile)
	}
	if d.Color != nil {
		cfg.Color = *d.Color
	}
	if d.Debug != nil {
		cfg.Debug = *d.Debug
	}
	return cfg
}

// Validate rejects non-positive limits.
func (c Config) Validate() error {
	switch {
	case c.MaxConsts <= 0:
		return fmt.Errorf("config: max_consts must be positive, got %d", c.MaxConsts)
	case c.MaxStack <= 0:
		return fmt.Errorf("config: max_stack must be positive, got %d", c.MaxStack)
	case c.MaxDepth <= 0:
		return fmt.Errorf("config: max_depth must be positive, got %d", c.MaxDepth)
	case c.MaxResultBits <= 0:
		return fmt.Errorf("config: max_result_bits must be positive, got %d", c.MaxResultBits)
	}
	return nil
}

// WriteConfig serialises the file-backed fields of cfg to path.
func WriteConfig(cfg Config, path string) error {
	if path == "" {
		return fmt.Errorf("config: missing path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: resolve %s: %w", path, err)
	}
	f, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("config: write %s: %w", abs, err)
	}
	defer f.Close()
	if err := EncodeConfig(f, cfg); err != nil {
		return fmt.Errorf("config: marshal %s: %w", abs, err)
	}
	return nil
}

// EncodeConfig writes the file-backed fields of cfg as YAML.
func EncodeConfig(w io.Writer, cfg Config) error {
	disk := configDisk{
		MaxConsts:     &cfg.MaxConsts,
		MaxStack:      &cfg.MaxStack,
		MaxDepth:      &cfg.MaxDepth,
		MaxResultBits: &cfg.MaxResultBits,
		Prompt:        &cfg.Prompt,
		HistoryFile:   &cfg.HistoryFile,
		Color:         &cfg.Color,
		Debug:         &cfg.Debug,
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(disk); err != nil {
		return err
	}
	return enc.Close()
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
