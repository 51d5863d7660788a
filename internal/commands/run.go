// internal/commands/run.go
package ollamabench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/k0kubun/pp"
	"github.com/mwiater/ollamabench/internal/appconfig"
	"github.com/mwiater/ollamabench/internal/benchmark"
	"github.com/mwiater/ollamabench/internal/logging"
	"github.com/mwiater/ollamabench/internal/ollama"
	"github.com/mwiater/ollamabench/internal/report"
	"github.com/mwiater/ollamabench/internal/tui"
	"github.com/spf13/cobra"
)

// runCmd implements 'run', the benchmark itself. The bare root command
// delegates here as well.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the serial and parallel benchmark phases",
	Long:  `The 'run' command benchmarks a model by invoking ollama repeatedly, first one run at a time and then all runs at once, and reports per-run and averaged eval rates per phase.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmark(cmd.Context(), GetConfig(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// Seams swapped in tests so the benchmark can run against a stub instead of
// the real binary.
var (
	newInvoker = func(cfg *appconfig.Config) (benchmark.Invoker, error) {
		client := ollama.NewClient(cfg.BinaryName(), cfg.ServerEnv())
		if _, err := client.Resolve(); err != nil {
			return nil, err
		}
		return client, nil
	}

	availableModels = func(ctx context.Context, invoker benchmark.Invoker) []string {
		client, ok := invoker.(*ollama.Client)
		if !ok {
			return nil
		}
		models, err := client.ListModels(ctx)
		if err != nil {
			logging.LogEvent("list models: %v", err)
			return nil
		}
		return models
	}

	collectParams = tui.CollectParams
)

// runBenchmark drives both phases and writes the report. The binary is
// resolved before anything else; an unresolvable binary is fatal before any
// prompt is shown.
func runBenchmark(ctx context.Context, cfg *appconfig.Config, out io.Writer) error {
	if cfg == nil {
		return errors.New("configuration is not initialized")
	}

	invoker, err := newInvoker(cfg)
	if err != nil {
		return err
	}

	if !cfg.Defaults && needsParams(cfg) {
		params, err := collectParams(availableModels(ctx, invoker), tui.Params{
			Model:        cfg.ModelName(),
			SerialRuns:   cfg.SerialCount(),
			ParallelRuns: cfg.ParallelCount(),
		})
		if err != nil {
			return err
		}
		cfg.Model = params.Model
		cfg.SerialRuns = params.SerialRuns
		cfg.ParallelRuns = params.ParallelRuns
		cfg.SerialRunsSet = true
		cfg.ParallelRunsSet = true
	}

	if cfg.Debug {
		pp.Println(cfg)
	}

	if err := cfg.PersistServerEnv(); err != nil {
		logging.LogEvent("persist server env: %v", err)
	}

	writer := report.New(out, cfg.Markdown)
	runner := benchmark.NewRunner(invoker, cfg.ModelName(), cfg.PromptText())
	runner.OnResult(writer.Run)

	summaries := make([]benchmark.PhaseSummary, 0, 2)

	if n := cfg.SerialCount(); n > 0 {
		logging.LogPhase("serial", cfg.ModelName(), n, "starting")
		writer.PhaseHeader("serial", cfg.ModelName(), n)
		summary := runner.RunSerial(ctx, n)
		writer.Summary(summary)
		summaries = append(summaries, summary)
	} else {
		writer.SkippedPhase("serial")
	}

	if n := cfg.ParallelCount(); n > 0 {
		logging.LogPhase("parallel", cfg.ModelName(), n, "starting")
		writer.PhaseHeader("parallel", cfg.ModelName(), n)
		summary := runner.RunParallel(ctx, n)
		writer.Summary(summary)
		summaries = append(summaries, summary)
	} else {
		writer.SkippedPhase("parallel")
	}

	if cfg.ExportPath != "" {
		if err := exportSummaries(cfg.ExportPath, cfg.ModelName(), summaries); err != nil {
			return fmt.Errorf("export results: %w", err)
		}
		logging.LogEvent("benchmark results written to %s", cfg.ExportPath)
	}

	return nil
}

// needsParams reports whether any benchmark parameter still has to be
// collected interactively. A run count of zero that was supplied
// explicitly is a decision, not a gap.
func needsParams(cfg *appconfig.Config) bool {
	return cfg.Model == "" ||
		(cfg.SerialRuns == 0 && !cfg.SerialRunsSet) ||
		(cfg.ParallelRuns == 0 && !cfg.ParallelRunsSet)
}

// exportPayload is the JSON shape written by --export.
type exportPayload struct {
	Model  string                   `json:"model"`
	Phases []benchmark.PhaseSummary `json:"phases"`
}

// exportSummaries writes the phase summaries to a JSON file.
func exportSummaries(path, model string, summaries []benchmark.PhaseSummary) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating results directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating result file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(exportPayload{Model: model, Phases: summaries}); err != nil {
		return fmt.Errorf("error writing results to file: %w", err)
	}

	return nil
}
