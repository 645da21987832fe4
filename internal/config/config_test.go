package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/scene-adapter/internal/model"
)

// isolate points HOME at a temp dir and clears every override.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{EnvConfig, EnvDB, EnvNarratorVoice, EnvDefaultModel, EnvWPM, EnvAddr} {
		t.Setenv(k, "")
	}
	return home
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NarratorVoice != "fable" || cfg.WordsPerMinute != 150 || cfg.DefaultModel != "nanobanana" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.DBPath != filepath.Join(home, ".scene-adapter", "journal.db") {
		t.Errorf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.Path != "" {
		t.Errorf("expected no config file, got %q", cfg.Path)
	}
}

func TestLoad_File(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".scene-adapter", "config.yaml"), `
narrator_voice: deep
words_per_minute: 180
models:
  sdxl:
    tokenizer: clip
    max_tokens: 150
    truncation: intelligent
  hidream:
    tokenizer: clip
    max_tokens: 60
    truncation: intelligent
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NarratorVoice != "deep" || cfg.WordsPerMinute != 180 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.DefaultModel != "nanobanana" {
		t.Errorf("unset keys should keep defaults, got %q", cfg.DefaultModel)
	}

	a, err := cfg.Adapter()
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	if p := a.GetModelConfig("sdxl"); p.MaxTokens != 150 || p.Tokenizer != model.TokenizerClip {
		t.Errorf("expected custom profile, got %+v", p)
	}
	if p := a.GetModelConfig("hidream"); p.MaxTokens != 60 {
		t.Errorf("expected override of built-in, got %+v", p)
	}
	if p := a.GetModelConfig("nanobanana-pro"); p.MaxTokens != 8192 {
		t.Errorf("expected built-in kept, got %+v", p)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.yaml")
	writeFile(t, path, "narrator_voice: deep\naddr: \":9000\"\n")

	t.Setenv(EnvConfig, path)
	t.Setenv(EnvNarratorVoice, "calm")
	t.Setenv(EnvWPM, "120")
	t.Setenv(EnvDB, "/tmp/journal.db")
	t.Setenv(EnvDefaultModel, "nanobanana-pro")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Path != path || cfg.Addr != ":9000" {
		t.Errorf("expected config from env path, got %+v", cfg)
	}
	if cfg.NarratorVoice != "calm" || cfg.WordsPerMinute != 120 || cfg.DBPath != "/tmp/journal.db" || cfg.DefaultModel != "nanobanana-pro" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}

	asm, err := cfg.Assembler()
	if err != nil {
		t.Fatalf("assembler: %v", err)
	}
	if asm.Options().WordsPerMinute != 120 {
		t.Errorf("expected wpm 120, got %v", asm.Options().WordsPerMinute)
	}
}

func TestLoad_Errors(t *testing.T) {
	home := isolate(t)

	if _, err := Load(filepath.Join(home, "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}

	bad := filepath.Join(home, "bad.yaml")
	writeFile(t, bad, "models:\n  x:\n    tokenizer: bpe\n    max_tokens: 10\n    truncation: none\n")
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "tokenizer") {
		t.Errorf("expected tokenizer validation error, got %v", err)
	}

	zero := filepath.Join(home, "zero.yaml")
	writeFile(t, zero, "words_per_minute: -5\n")
	if _, err := Load(zero); err == nil {
		t.Error("expected error for negative wpm")
	}

	t.Setenv(EnvWPM, "fast")
	if _, err := Load(""); err == nil {
		t.Error("expected error for unparsable wpm")
	}

	for _, v := range []string{"NaN", "Inf", "-Inf"} {
		t.Setenv(EnvWPM, v)
		if _, err := Load(""); err == nil {
			t.Errorf("expected error for wpm %s", v)
		}
	}
	t.Setenv(EnvWPM, "")

	strict := filepath.Join(home, "strict.yaml")
	writeFile(t, strict, "models:\n  nanobanana:\n    tokenizer: clip\n    max_tokens: 77\n    truncation: intelligent\n")
	if _, err := Load(strict); err == nil {
		t.Error("expected error when the fallback profile truncates")
	}
}

func TestLoad_DefaultModelIsNotFallback(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDefaultModel, "hidream")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultModel != "hidream" {
		t.Errorf("expected default model hidream, got %q", cfg.DefaultModel)
	}

	a, err := cfg.Adapter()
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	if a.RequiresCompression("totally-unknown-model") {
		t.Error("unknown model ids must resolve to the permissive profile")
	}
	if p := a.GetModelConfig("totally-unknown-model"); p.Truncation != model.TruncationNone || p.MaxTokens != 4096 {
		t.Errorf("unexpected fallback profile %+v", p)
	}
	if !a.RequiresCompression(cfg.DefaultModel) {
		t.Error("expected the configured default model to keep its own profile")
	}
}
