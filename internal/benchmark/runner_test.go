// internal/benchmark/runner_test.go
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mwiater/ollamabench/internal/ollama"
)

// stubInvoker returns canned verbose output per invocation, in call order for
// serial phases and keyed by a counter for parallel phases.
type stubInvoker struct {
	mu    sync.Mutex
	rates []float64
	calls int
	err   error
}

func (s *stubInvoker) Run(ctx context.Context, model, prompt string) (ollama.RunOutput, error) {
	s.mu.Lock()
	idx := s.calls
	s.calls++
	s.mu.Unlock()

	if s.err != nil {
		return ollama.RunOutput{}, s.err
	}
	rate := s.rates[idx%len(s.rates)]
	verbose := fmt.Sprintf("eval count: 100 token(s)\neval rate: %.2f tokens/s\n", rate)
	return ollama.RunOutput{Stderr: verbose, Stdout: "some response"}, nil
}

func TestRunSerialConstantRate(t *testing.T) {
	stub := &stubInvoker{rates: []float64{42.5}}
	runner := NewRunner(stub, "tinyllama", "hello")

	summary := runner.RunSerial(context.Background(), 4)

	if summary.Phase != "serial" || summary.Requested != 4 {
		t.Fatalf("unexpected summary header: %+v", summary)
	}
	if summary.Completed() != 4 {
		t.Fatalf("expected 4 completed runs, got %d", summary.Completed())
	}
	average, err := summary.Average()
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if average != 42.5 {
		t.Fatalf("expected average 42.5, got %v", average)
	}
	if summary.Elapsed < 0 {
		t.Fatalf("expected nonnegative elapsed, got %v", summary.Elapsed)
	}
}

func TestRunSerialAveragesDistinctRates(t *testing.T) {
	stub := &stubInvoker{rates: []float64{10, 20, 30}}
	runner := NewRunner(stub, "tinyllama", "hello")

	summary := runner.RunSerial(context.Background(), 3)

	average, err := summary.Average()
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if got := fmt.Sprintf("%.2f", average); got != "20.00" {
		t.Fatalf("expected average 20.00, got %s", got)
	}
}

func TestRunSerialEmitsInOrder(t *testing.T) {
	stub := &stubInvoker{rates: []float64{1, 2, 3}}
	runner := NewRunner(stub, "tinyllama", "hello")

	var seen []int
	runner.OnResult(func(r RunResult) { seen = append(seen, r.Run) })

	runner.RunSerial(context.Background(), 3)

	if len(seen) != 3 {
		t.Fatalf("expected 3 callbacks, got %d", len(seen))
	}
	for i, run := range seen {
		if run != i+1 {
			t.Fatalf("expected launch order, got %v", seen)
		}
	}
}

func TestRunParallelAveragesDistinctRates(t *testing.T) {
	stub := &stubInvoker{rates: []float64{5, 7}}
	runner := NewRunner(stub, "tinyllama", "hello")

	summary := runner.RunParallel(context.Background(), 2)

	if summary.Phase != "parallel" {
		t.Fatalf("unexpected phase: %s", summary.Phase)
	}
	average, err := summary.Average()
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if got := fmt.Sprintf("%.2f", average); got != "6.00" {
		t.Fatalf("expected average 6.00, got %s", got)
	}
}

func TestRunParallelReportsEachRunOnceInLaunchOrder(t *testing.T) {
	stub := &stubInvoker{rates: []float64{1, 2, 3, 4, 5}}
	runner := NewRunner(stub, "tinyllama", "hello")

	counts := make(map[int]int)
	var order []int
	runner.OnResult(func(r RunResult) {
		counts[r.Run]++
		order = append(order, r.Run)
	})

	summary := runner.RunParallel(context.Background(), 5)

	if len(summary.Results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(summary.Results))
	}
	for run := 1; run <= 5; run++ {
		if counts[run] != 1 {
			t.Fatalf("expected run %d reported exactly once, got %d", run, counts[run])
		}
	}
	for i, run := range order {
		if run != i+1 {
			t.Fatalf("expected launch order 1..5, got %v", order)
		}
	}
	for i, r := range summary.Results {
		if r.Run != i+1 {
			t.Fatalf("result slot %d holds run %d", i, r.Run)
		}
	}
}

func TestFailedRunsAreRecordedNotFatal(t *testing.T) {
	stub := &stubInvoker{err: errors.New("connection refused")}
	runner := NewRunner(stub, "tinyllama", "hello")

	summary := runner.RunSerial(context.Background(), 3)

	if len(summary.Results) != 3 {
		t.Fatalf("expected all 3 runs attempted, got %d", len(summary.Results))
	}
	if summary.Completed() != 0 {
		t.Fatalf("expected 0 completed, got %d", summary.Completed())
	}
	if _, err := summary.Average(); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}
}

func TestMissingMetricIsPerRunError(t *testing.T) {
	// Output without an eval rate line must surface as a run error, not a
	// zero folded into the average.
	missing := &metriclessInvoker{}
	runner := NewRunner(missing, "tinyllama", "hello")

	summary := runner.RunSerial(context.Background(), 2)

	for _, r := range summary.Results {
		if !r.Failed() {
			t.Fatalf("expected run %d to fail, got rate %v", r.Run, r.EvalRate)
		}
	}
	if _, err := summary.Average(); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}
}

type metriclessInvoker struct{}

func (metriclessInvoker) Run(ctx context.Context, model, prompt string) (ollama.RunOutput, error) {
	return ollama.RunOutput{Stdout: "a response with no stats block"}, nil
}

func TestMixedFailuresAverageCompletedOnly(t *testing.T) {
	mixed := &flakyInvoker{rates: []float64{10, 0, 30}, failOn: 2}
	runner := NewRunner(mixed, "tinyllama", "hello")

	summary := runner.RunSerial(context.Background(), 3)

	if summary.Completed() != 2 {
		t.Fatalf("expected 2 completed, got %d", summary.Completed())
	}
	average, err := summary.Average()
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if got := fmt.Sprintf("%.2f", average); got != "20.00" {
		t.Fatalf("expected average over completed runs 20.00, got %s", got)
	}
}

type flakyInvoker struct {
	mu     sync.Mutex
	rates  []float64
	calls  int
	failOn int
}

func (f *flakyInvoker) Run(ctx context.Context, model, prompt string) (ollama.RunOutput, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()

	if call == f.failOn {
		return ollama.RunOutput{}, errors.New("boom")
	}
	verbose := fmt.Sprintf("eval rate: %.2f tokens/s\n", f.rates[call-1])
	return ollama.RunOutput{Stderr: verbose}, nil
}

func TestZeroRunPhase(t *testing.T) {
	stub := &stubInvoker{rates: []float64{1}}
	runner := NewRunner(stub, "tinyllama", "hello")

	serial := runner.RunSerial(context.Background(), 0)
	parallel := runner.RunParallel(context.Background(), 0)

	for _, summary := range []PhaseSummary{serial, parallel} {
		if len(summary.Results) != 0 {
			t.Fatalf("expected no results, got %d", len(summary.Results))
		}
		if _, err := summary.Average(); !errors.Is(err, ErrNoRuns) {
			t.Fatalf("expected ErrNoRuns for empty phase, got %v", err)
		}
	}
	if stub.calls != 0 {
		t.Fatalf("expected no invocations, got %d", stub.calls)
	}
}
