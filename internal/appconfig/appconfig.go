// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultModel is the model benchmarked when none is selected.
	defaultModel = "llama3.2:1b"
	// defaultPrompt keeps every run comparable; a short deterministic task.
	defaultPrompt = "Why is the sky blue? Answer in one short paragraph."
	// defaultSerialRuns is the serial-phase run count for the default preset.
	defaultSerialRuns = 5
	// defaultParallelRuns is the parallel-phase run count for the default preset.
	defaultParallelRuns = 5
	// defaultMaxLoadedModels caps concurrently loaded models on the server.
	defaultMaxLoadedModels = 2
	// defaultNumParallel caps parallel requests per loaded model.
	defaultNumParallel = 4
	// defaultContextLength is the context window requested from the server.
	defaultContextLength = 2048
	// defaultMaxQueue caps the server's request queue depth.
	defaultMaxQueue = 512
)

// Config represents the top-level application configuration.
type Config struct {
	Model           string `json:"model"`
	Prompt          string `json:"prompt,omitempty"`
	SerialRuns      int    `json:"serialRuns"`
	ParallelRuns    int    `json:"parallelRuns"`
	MaxLoadedModels int    `json:"maxLoadedModels,omitempty"`
	NumParallel     int    `json:"numParallel,omitempty"`
	ContextLength   int    `json:"contextLength,omitempty"`
	MaxQueue        int    `json:"maxQueue,omitempty"`
	OllamaBinary    string `json:"ollamaBinary,omitempty"`
	Markdown        bool   `json:"markdown"`
	Defaults        bool   `json:"-"`
	ExportPath      string `json:"export,omitempty" mapstructure:"export"`
	Debug           bool   `json:"debug"`
	LogFile         string `json:"logFile,omitempty"`
	ConfigPath      string `json:"-"`

	// SerialRunsSet and ParallelRunsSet record whether the run counts
	// were supplied at all, so an explicit zero skips a phase instead of
	// falling back to the default preset.
	SerialRunsSet   bool `json:"-" mapstructure:"-"`
	ParallelRunsSet bool `json:"-" mapstructure:"-"`
}

// ModelName returns the model to benchmark, applying the default preset model if unset.
func (c Config) ModelName() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return defaultModel
}

// PromptText returns the prompt sent on every invocation, applying the default if unset.
func (c Config) PromptText() string {
	if p := strings.TrimSpace(c.Prompt); p != "" {
		return p
	}
	return defaultPrompt
}

// SerialCount returns the serial-phase run count. The default preset applies
// only when no count was supplied; an explicit zero stays zero.
func (c Config) SerialCount() int {
	if c.SerialRuns > 0 || c.SerialRunsSet {
		return c.SerialRuns
	}
	return defaultSerialRuns
}

// ParallelCount returns the parallel-phase run count. The default preset
// applies only when no count was supplied; an explicit zero stays zero.
func (c Config) ParallelCount() int {
	if c.ParallelRuns > 0 || c.ParallelRunsSet {
		return c.ParallelRuns
	}
	return defaultParallelRuns
}

// BinaryName returns the configured path to the ollama executable, or the bare
// command name so PATH resolution applies.
func (c Config) BinaryName() string {
	if b := strings.TrimSpace(c.OllamaBinary); b != "" {
		return b
	}
	return "ollama"
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "ollamabench.log"
}

// serverKnobs resolves the four server tuning values with defaults applied.
func (c Config) serverKnobs() map[string]int {
	knobs := map[string]int{
		"OLLAMA_MAX_LOADED_MODELS": defaultMaxLoadedModels,
		"OLLAMA_NUM_PARALLEL":      defaultNumParallel,
		"OLLAMA_CONTEXT_LENGTH":    defaultContextLength,
		"OLLAMA_MAX_QUEUE":         defaultMaxQueue,
	}
	if c.MaxLoadedModels > 0 {
		knobs["OLLAMA_MAX_LOADED_MODELS"] = c.MaxLoadedModels
	}
	if c.NumParallel > 0 {
		knobs["OLLAMA_NUM_PARALLEL"] = c.NumParallel
	}
	if c.ContextLength > 0 {
		knobs["OLLAMA_CONTEXT_LENGTH"] = c.ContextLength
	}
	if c.MaxQueue > 0 {
		knobs["OLLAMA_MAX_QUEUE"] = c.MaxQueue
	}
	return knobs
}

// serverEnvOrder fixes the emission order of the server environment variables.
var serverEnvOrder = []string{
	"OLLAMA_MAX_LOADED_MODELS",
	"OLLAMA_NUM_PARALLEL",
	"OLLAMA_CONTEXT_LENGTH",
	"OLLAMA_MAX_QUEUE",
}

// ServerEnv translates the server tuning values into KEY=value pairs for the
// ollama process environment. Configuration stays in the struct everywhere
// else; this is the only place it becomes environment variables.
func (c Config) ServerEnv() []string {
	knobs := c.serverKnobs()
	env := make([]string, 0, len(serverEnvOrder))
	for _, key := range serverEnvOrder {
		env = append(env, fmt.Sprintf("%s=%d", key, knobs[key]))
	}
	return env
}

// Validate checks value ranges that flags can supply but the JSON schema
// never sees.
func (c Config) Validate() error {
	if c.SerialRuns < 0 {
		return errors.New("serial run count cannot be negative")
	}
	if c.ParallelRuns < 0 {
		return errors.New("parallel run count cannot be negative")
	}
	for _, n := range []int{c.MaxLoadedModels, c.NumParallel, c.ContextLength, c.MaxQueue} {
		if n < 0 {
			return errors.New("server tuning values cannot be negative")
		}
	}
	return nil
}

// runSetx is swapped in tests to avoid touching the real user environment.
var runSetx = func(key, value string) error {
	return exec.Command("setx", key, value).Run()
}

// PersistServerEnv writes the server tuning values into the user's persistent
// session environment. Only Windows has such a registry; elsewhere this is a
// no-op. Failures are reported but never fatal.
func (c Config) PersistServerEnv() error {
	if runtime.GOOS != "windows" {
		return nil
	}
	knobs := c.serverKnobs()
	var firstErr error
	for _, key := range serverEnvOrder {
		if err := runSetx(key, strconv.Itoa(knobs[key])); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("persist %s: %w", key, err)
		}
	}
	return firstErr
}
