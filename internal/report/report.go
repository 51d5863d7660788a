// internal/report/report.go
// Package report renders benchmark phase results as plain text or markdown.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/ollamabench/internal/benchmark"
	"github.com/mwiater/ollamabench/internal/util"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	runStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	averageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
)

// Writer renders one benchmark report to an output stream.
type Writer struct {
	out      io.Writer
	markdown bool
}

// New returns a Writer. When markdown is true, phases render as two-column
// tables instead of styled lines.
func New(out io.Writer, markdown bool) *Writer {
	return &Writer{out: out, markdown: markdown}
}

// PhaseHeader announces a phase before its runs start.
func (w *Writer) PhaseHeader(phase, model string, n int) {
	title := fmt.Sprintf("%s phase: %d run(s) of %s", phase, n, model)
	if w.markdown {
		fmt.Fprintf(w.out, "\n### %s\n\n", title)
		fmt.Fprintln(w.out, "| Run | Eval rate (tokens/s) |")
		fmt.Fprintln(w.out, "|-----|----------------------|")
		return
	}
	fmt.Fprintln(w.out, headerStyle.Render(title))
}

// Run renders one per-run line. Failed runs report the error instead of a rate.
func (w *Writer) Run(result benchmark.RunResult) {
	if w.markdown {
		if result.Failed() {
			fmt.Fprintf(w.out, "| %d | metric not found |\n", result.Run)
			return
		}
		fmt.Fprintf(w.out, "| %d | %.2f |\n", result.Run, result.EvalRate)
		return
	}
	if result.Failed() {
		reason := util.TruncateRunes(result.Err.Error(), 80)
		fmt.Fprintln(w.out, failStyle.Render(fmt.Sprintf("  run %d: metric not found (%s)", result.Run, reason)))
		return
	}
	fmt.Fprintln(w.out, runStyle.Render(fmt.Sprintf("  run %d: %.2f tokens/s", result.Run, result.EvalRate)))
}

// Summary renders exactly one average line and one elapsed line for the phase.
func (w *Writer) Summary(summary benchmark.PhaseSummary) {
	average, err := summary.Average()

	if w.markdown {
		if errors.Is(err, benchmark.ErrNoRuns) {
			fmt.Fprintf(w.out, "| **Average** | no completed runs |\n")
		} else {
			fmt.Fprintf(w.out, "| **Average** | **%.2f** |\n", average)
		}
		fmt.Fprintf(w.out, "\nElapsed: %.2f seconds (%d/%d runs completed)\n",
			summary.ElapsedSeconds(), summary.Completed(), summary.Requested)
		return
	}

	if errors.Is(err, benchmark.ErrNoRuns) {
		fmt.Fprintln(w.out, failStyle.Render("  average: no completed runs"))
	} else {
		fmt.Fprintln(w.out, averageStyle.Render(fmt.Sprintf("  average: %.2f tokens/s", average)))
	}
	fmt.Fprintf(w.out, "  elapsed: %.2f seconds (%d/%d runs completed)\n\n",
		summary.ElapsedSeconds(), summary.Completed(), summary.Requested)
}

// SkippedPhase notes a phase that was configured with zero runs.
func (w *Writer) SkippedPhase(phase string) {
	if w.markdown {
		fmt.Fprintf(w.out, "\n### %s phase skipped (0 runs requested)\n", phase)
		return
	}
	fmt.Fprintf(w.out, "%s phase skipped (0 runs requested)\n", phase)
}
