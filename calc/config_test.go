package calc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_Config_DecodeOverlaysDefaults(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader("max_consts: 4\nprompt: 'calc> '\ncolor: false\n"))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.MaxConsts != 4 || cfg.Prompt != "calc> " || cfg.Color {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	def := DefaultConfig()
	if cfg.MaxStack != def.MaxStack || cfg.MaxDepth != def.MaxDepth || cfg.HistoryFile != def.HistoryFile {
		t.Fatalf("untouched keys should keep defaults: %+v", cfg)
	}
}

func Test_Config_EmptyDocumentIsDefault(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.MaxConsts != DefaultMaxConsts || cfg.Prompt != DefaultPrompt {
		t.Fatalf("got %+v", cfg)
	}
}

func Test_Config_Rejects(t *testing.T) {
	for _, doc := range []string{
		"bogus: 1\n",
		"max_stack: 0\n",
		"max_depth: -3\n",
		"max_consts: many\n",
	} {
		if _, err := DecodeConfig(strings.NewReader(doc)); err == nil {
			t.Errorf("%q: expected error", doc)
		}
	}
}

func Test_Config_WriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bigcalc.yaml")
	cfg := DefaultConfig()
	cfg.MaxResultBits = 4096
	cfg.Debug = true
	if err := WriteConfig(cfg, path); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "max_result_bits: 4096") {
		t.Fatalf("unexpected file:\n%s", data)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.MaxResultBits != 4096 || !got.Debug {
		t.Fatalf("got %+v", got)
	}
}

func Test_Config_LoadErrors(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("empty path should fail")
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("max_stack: [1, 2]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(bad)
	if err == nil || !strings.Contains(err.Error(), "config: parse") {
		t.Fatalf("want parse error, got %v", err)
	}
}
