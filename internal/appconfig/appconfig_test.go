// internal/appconfig/appconfig_test.go
package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `{
        "model": "gemma3:4b",
        "serialRuns": 3,
        "parallelRuns": 8,
        "contextLength": 4096,
        "markdown": true
    }`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if cfg.ModelName() != "gemma3:4b" {
		t.Fatalf("expected model gemma3:4b, got %s", cfg.ModelName())
	}
	if cfg.SerialCount() != 3 || cfg.ParallelCount() != 8 {
		t.Fatalf("unexpected run counts: %d/%d", cfg.SerialCount(), cfg.ParallelCount())
	}
	if !cfg.Markdown {
		t.Fatal("expected markdown output enabled")
	}
	if cfg.ConfigPath != path {
		t.Fatalf("expected config path recorded, got %s", cfg.ConfigPath)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown property": `{"hosts": []}`,
		"negative runs":    `{"serialRuns": -1}`,
		"string count":     `{"parallelRuns": "five"}`,
		"zero knob":        `{"maxQueue": 0}`,
	}
	for name, payload := range cases {
		if _, err := Load(writeConfig(t, payload)); err == nil {
			t.Errorf("%s: expected schema error, got none", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil || !strings.Contains(err.Error(), "no configuration file found") {
		t.Fatalf("expected missing-file error, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	if cfg.ModelName() == "" {
		t.Fatal("expected a default model")
	}
	if cfg.SerialCount() <= 0 || cfg.ParallelCount() <= 0 {
		t.Fatalf("expected positive default counts, got %d/%d", cfg.SerialCount(), cfg.ParallelCount())
	}
	if cfg.BinaryName() != "ollama" {
		t.Fatalf("expected default binary ollama, got %s", cfg.BinaryName())
	}
	if cfg.LogFilePath() != "ollamabench.log" {
		t.Fatalf("unexpected default log file: %s", cfg.LogFilePath())
	}
}

func TestExplicitZeroCounts(t *testing.T) {
	cfg := Config{SerialRunsSet: true, ParallelRunsSet: true}
	if cfg.SerialCount() != 0 || cfg.ParallelCount() != 0 {
		t.Fatalf("expected supplied zeros to stay zero, got %d/%d", cfg.SerialCount(), cfg.ParallelCount())
	}
}

func TestServerEnv(t *testing.T) {
	cfg := Config{MaxLoadedModels: 1, NumParallel: 2, ContextLength: 8192, MaxQueue: 64}
	env := cfg.ServerEnv()

	expected := []string{
		"OLLAMA_MAX_LOADED_MODELS=1",
		"OLLAMA_NUM_PARALLEL=2",
		"OLLAMA_CONTEXT_LENGTH=8192",
		"OLLAMA_MAX_QUEUE=64",
	}
	if len(env) != len(expected) {
		t.Fatalf("expected %d env entries, got %d", len(expected), len(env))
	}
	for i, want := range expected {
		if env[i] != want {
			t.Fatalf("env[%d] = %q, want %q", i, env[i], want)
		}
	}
}

func TestServerEnvDefaults(t *testing.T) {
	env := Config{}.ServerEnv()
	for _, kv := range env {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || parts[1] == "" || parts[1] == "0" {
			t.Fatalf("expected every knob defaulted to a positive value, got %q", kv)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{SerialRuns: -1}).Validate(); err == nil {
		t.Fatal("expected error for negative serial runs")
	}
	if err := (Config{MaxQueue: -5}).Validate(); err == nil {
		t.Fatal("expected error for negative tuning value")
	}
	if err := (Config{SerialRuns: 2, ParallelRuns: 2}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
