// internal/metrics/verbose.go
// Package metrics extracts throughput statistics from ollama's verbose output.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrRateNotFound indicates the verbose output never contained an eval rate line.
var ErrRateNotFound = errors.New("eval rate not found in output")

// evalRateLabel is the diagnostic line carrying tokens-per-second throughput.
// The prompt phase emits its own "prompt eval rate:" line, which must not match.
const evalRateLabel = "eval rate:"

// VerboseStats holds the statistics block ollama prints after a --verbose run.
// Only EvalRate is required; the remaining fields are zero when absent.
type VerboseStats struct {
	TotalDuration   time.Duration
	LoadDuration    time.Duration
	PromptEvalCount int
	PromptEvalRate  float64
	EvalCount       int
	EvalRate        float64
}

// ParseEvalRate scans verbose output for the eval rate line and returns its
// tokens-per-second value. A missing line yields ErrRateNotFound; a present
// but non-numeric value yields a distinct parse error. The value is never
// silently treated as zero.
func ParseEvalRate(output string) (float64, error) {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, evalRateLabel) {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 3 {
			return 0, fmt.Errorf("malformed eval rate line %q", trimmed)
		}
		rate, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return 0, fmt.Errorf("eval rate %q is not numeric: %w", fields[2], err)
		}
		return rate, nil
	}
	return 0, ErrRateNotFound
}

// ParseVerboseStats extracts the full statistics block from verbose output.
// The eval rate is mandatory; the other fields are filled when their lines
// parse and left zero otherwise.
func ParseVerboseStats(output string) (VerboseStats, error) {
	rate, err := ParseEvalRate(output)
	if err != nil {
		return VerboseStats{}, err
	}

	stats := VerboseStats{EvalRate: rate}
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "total duration:"):
			stats.TotalDuration = parseDurationField(trimmed)
		case strings.HasPrefix(trimmed, "load duration:"):
			stats.LoadDuration = parseDurationField(trimmed)
		case strings.HasPrefix(trimmed, "prompt eval count:"):
			stats.PromptEvalCount = parseCountField(trimmed)
		case strings.HasPrefix(trimmed, "prompt eval rate:"):
			stats.PromptEvalRate = parseRateField(trimmed)
		case strings.HasPrefix(trimmed, "eval count:"):
			stats.EvalCount = parseCountField(trimmed)
		}
	}
	return stats, nil
}

// parseDurationField reads the last field of a "label: value" line as a duration.
func parseDurationField(line string) time.Duration {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0
	}
	d, err := time.ParseDuration(fields[len(fields)-1])
	if err != nil {
		return 0
	}
	return d
}

// parseCountField reads the token count from a "label: N token(s)" line.
func parseCountField(line string) int {
	fields := strings.Fields(line)
	for _, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			return n
		}
	}
	return 0
}

// parseRateField reads the numeric value from a "label: N tokens/s" line.
func parseRateField(line string) float64 {
	fields := strings.Fields(line)
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			return v
		}
	}
	return 0
}
