// internal/ollama/client.go
// Package ollama drives the external ollama executable.
package ollama

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mwiater/ollamabench/internal/logging"
)

// lookPath is swapped in tests to control binary resolution.
var lookPath = exec.LookPath

// Client invokes the ollama binary with the server environment applied.
type Client struct {
	binary   string
	env      []string
	resolved string
}

// NewClient returns a client for the given binary path or command name.
// env holds extra KEY=value pairs appended to the process environment of
// every invocation.
func NewClient(binary string, env []string) *Client {
	return &Client{binary: binary, env: env}
}

// Resolve locates the ollama executable once, up front. The returned error
// is fatal to the caller; nothing else is attempted against a binary that
// could not be found.
func (c *Client) Resolve() (string, error) {
	if c.resolved != "" {
		return c.resolved, nil
	}
	path, err := lookPath(c.binary)
	if err != nil {
		return "", fmt.Errorf("ollama executable %q could not be found: %w", c.binary, err)
	}
	c.resolved = path
	return path, nil
}

// RunOutput captures both streams of one invocation. The verbose statistics
// block arrives on stderr; the model's response on stdout.
type RunOutput struct {
	Stdout string
	Stderr string
}

// Combined returns both streams joined, stderr first, for metric scanning.
func (o RunOutput) Combined() string {
	return o.Stderr + "\n" + o.Stdout
}

// Run executes `ollama run <model> --verbose <prompt>` and captures its
// output. The context is the only cancellation mechanism; no timeout is
// imposed here. A nonzero exit returns the captured output alongside the
// error so the caller can record the failure per run.
func (c *Client) Run(ctx context.Context, model, prompt string) (RunOutput, error) {
	binary, err := c.Resolve()
	if err != nil {
		return RunOutput{}, err
	}

	cmd := exec.CommandContext(ctx, binary, "run", model, "--verbose", prompt)
	cmd.Env = append(os.Environ(), c.env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.LogEvent("[RUN] model=%s binary=%s", model, binary)
	err = cmd.Run()
	out := RunOutput{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return out, fmt.Errorf("ollama run %s: %w", model, err)
	}
	return out, nil
}

// ListModels executes `ollama list` and returns the model names from its
// first column, skipping the header line.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	binary, err := c.Resolve()
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, binary, "list")
	cmd.Env = append(os.Environ(), c.env...)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ollama list: %w", err)
	}
	return parseModelList(string(output)), nil
}

// parseModelList extracts model names from `ollama list` output.
func parseModelList(output string) []string {
	var models []string
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if strings.EqualFold(fields[0], "NAME") {
			continue
		}
		models = append(models, fields[0])
	}
	return models
}
