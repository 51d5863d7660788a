// internal/benchmark/runner.go
// Package benchmark drives serial and parallel throughput phases against the
// ollama executable and aggregates their eval rates.
package benchmark

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mwiater/ollamabench/internal/logging"
	"github.com/mwiater/ollamabench/internal/metrics"
	"github.com/mwiater/ollamabench/internal/ollama"
)

// Invoker runs one inference invocation and returns its captured output.
// *ollama.Client satisfies this; tests substitute stubs.
type Invoker interface {
	Run(ctx context.Context, model, prompt string) (ollama.RunOutput, error)
}

// Runner executes benchmark phases for a single model and prompt.
type Runner struct {
	invoker  Invoker
	model    string
	prompt   string
	onResult func(RunResult)
}

// NewRunner returns a Runner for the given invoker, model, and prompt.
func NewRunner(invoker Invoker, model, prompt string) *Runner {
	return &Runner{invoker: invoker, model: model, prompt: prompt}
}

// OnResult registers a callback fired once per run, in launch order, as
// results become reportable. For the serial phase that is after each run;
// for the parallel phase after the join barrier.
func (r *Runner) OnResult(fn func(RunResult)) {
	r.onResult = fn
}

// runOne performs a single invocation and extracts its eval rate. Invocation
// failures and missing metrics both land in RunResult.Err; neither aborts the
// remaining runs of a phase.
func (r *Runner) runOne(ctx context.Context, run int) RunResult {
	result := RunResult{Run: run}

	out, err := r.invoker.Run(ctx, r.model, r.prompt)
	if err != nil {
		result.Err = err
		result.ErrText = err.Error()
		logging.LogEvent("[RUN] model=%s run=%d failed: %v", r.model, run, err)
		return result
	}

	stats, err := metrics.ParseVerboseStats(out.Combined())
	if err != nil {
		result.Err = err
		result.ErrText = err.Error()
		logging.LogEvent("[RUN] model=%s run=%d metric not found: %v", r.model, run, err)
		return result
	}

	result.Stats = stats
	result.EvalRate = stats.EvalRate
	logging.LogEvent("[RUN] model=%s run=%d evalRate=%.2f", r.model, run, stats.EvalRate)
	return result
}

// emit fires the result callback when one is registered.
func (r *Runner) emit(result RunResult) {
	if r.onResult != nil {
		r.onResult(result)
	}
}

// RunSerial invokes the model n times, one after another, each run blocking
// until the previous completes.
func (r *Runner) RunSerial(ctx context.Context, n int) PhaseSummary {
	summary := PhaseSummary{Phase: "serial", Requested: n}
	start := time.Now()

	for i := 1; i <= n; i++ {
		result := r.runOne(ctx, i)
		summary.Results = append(summary.Results, result)
		r.emit(result)
	}

	summary.Elapsed = time.Since(start)
	return summary
}

// RunParallel launches all n invocations at once and waits for every one to
// finish before reporting. Results are stored by launch index, so reporting
// order follows launch order, not completion order. There is no bounded pool
// and no cancellation beyond ctx; a hung invocation blocks the whole phase.
func (r *Runner) RunParallel(ctx context.Context, n int) PhaseSummary {
	summary := PhaseSummary{Phase: "parallel", Requested: n}
	start := time.Now()

	results := make([]RunResult, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			results[i] = r.runOne(ctx, i+1)
			return nil
		})
	}
	_ = g.Wait()

	summary.Elapsed = time.Since(start)
	summary.Results = results
	for _, result := range results {
		r.emit(result)
	}
	return summary
}
