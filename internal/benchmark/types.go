// internal/benchmark/types.go
package benchmark

import (
	"errors"
	"time"

	"github.com/mwiater/ollamabench/internal/metrics"
)

// ErrNoRuns indicates a phase finished without a single successful run, so
// no average exists.
var ErrNoRuns = errors.New("no completed runs to average")

// RunResult holds the outcome of a single invocation. Run is the 1-based
// launch-order index. Err is set when the invocation failed or its output
// carried no usable eval rate; such results never contribute to the average.
type RunResult struct {
	Run      int                  `json:"run"`
	EvalRate float64              `json:"evalRate"`
	Stats    metrics.VerboseStats `json:"stats"`
	Err      error                `json:"-"`
	ErrText  string               `json:"error,omitempty"`
}

// Failed reports whether this run produced no usable metric.
func (r RunResult) Failed() bool {
	return r.Err != nil
}

// PhaseSummary aggregates one benchmark phase. Results are ordered by launch
// index regardless of completion order.
type PhaseSummary struct {
	Phase     string        `json:"phase"`
	Requested int           `json:"requested"`
	Results   []RunResult   `json:"results"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Completed returns the number of runs that produced a usable eval rate.
func (s PhaseSummary) Completed() int {
	n := 0
	for _, r := range s.Results {
		if !r.Failed() {
			n++
		}
	}
	return n
}

// Sum returns the total eval rate across completed runs.
func (s PhaseSummary) Sum() float64 {
	var sum float64
	for _, r := range s.Results {
		if !r.Failed() {
			sum += r.EvalRate
		}
	}
	return sum
}

// Average returns the arithmetic mean eval rate over completed runs. A phase
// with zero completed runs returns ErrNoRuns instead of dividing by zero.
func (s PhaseSummary) Average() (float64, error) {
	completed := s.Completed()
	if completed == 0 {
		return 0, ErrNoRuns
	}
	return s.Sum() / float64(completed), nil
}

// ElapsedSeconds returns the wall-clock phase duration in seconds.
func (s PhaseSummary) ElapsedSeconds() float64 {
	return s.Elapsed.Seconds()
}
