package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config, fallback Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	effective := fallback
	if cfg != nil {
		effective = *cfg
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Model:             %s\n", effective.ModelName())
	fmt.Fprintf(out, "  Serial Runs:       %d\n", effective.SerialCount())
	fmt.Fprintf(out, "  Parallel Runs:     %d\n", effective.ParallelCount())
	fmt.Fprintf(out, "  Ollama Binary:     %s\n", effective.BinaryName())
	fmt.Fprintf(out, "  Markdown Output:   %v\n", effective.Markdown)
	fmt.Fprintf(out, "  Debug:             %v\n", effective.Debug)
	fmt.Fprintf(out, "  Log File:          %s\n", effective.LogFilePath())
	if effective.ExportPath != "" {
		fmt.Fprintf(out, "  Export Path:       %s\n", effective.ExportPath)
	}

	fmt.Fprintln(out, "\nServer environment:")
	for _, kv := range effective.ServerEnv() {
		fmt.Fprintf(out, "  %s\n", kv)
	}
}
