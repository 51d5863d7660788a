// internal/commands/root.go
package ollamabench

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mwiater/ollamabench/internal/appconfig"
	"github.com/mwiater/ollamabench/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
// Invoked bare it runs the benchmark, matching the run subcommand.
var rootCmd = &cobra.Command{
	Use:   "ollamabench",
	Short: "ollamabench — serial and parallel throughput benchmarks for local Ollama models",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}

		// Captured before the flag-copy loops below, which mark every
		// flag as changed.
		serialSupplied := cmd.Flags().Changed("serial") || viper.InConfig("serialRuns")
		parallelSupplied := cmd.Flags().Changed("parallel") || viper.InConfig("parallelRuns")

		for _, name := range []string{"debug", "markdown", "defaults"} {
			if !cmd.Flags().Changed(name) {
				val := viper.GetBool(name)
				_ = cmd.Flags().Set(name, strconv.FormatBool(val))
			}
		}
		for _, name := range []string{"model", "ollama-bin", "export", "log-file"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, viper.GetString(viperKey(name)))
			}
		}
		for _, name := range []string{"serial", "parallel", "max-loaded-models", "num-parallel", "context-length", "max-queue"} {
			if !cmd.Flags().Changed(name) {
				_ = cmd.Flags().Set(name, strconv.Itoa(viper.GetInt(viperKey(name))))
			}
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = viper.ConfigFileUsed()
		cfg.SerialRunsSet = serialSupplied
		cfg.ParallelRunsSet = parallelSupplied
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmark(cmd.Context(), GetConfig(), cmd.OutOrStdout())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// flagKeys maps each kebab-case flag name onto its camelCase config key.
var flagKeys = map[string]string{
	"model":             "model",
	"serial":            "serialRuns",
	"parallel":          "parallelRuns",
	"max-loaded-models": "maxLoadedModels",
	"num-parallel":      "numParallel",
	"context-length":    "contextLength",
	"max-queue":         "maxQueue",
	"ollama-bin":        "ollamaBinary",
	"markdown":          "markdown",
	"defaults":          "defaults",
	"export":            "export",
	"debug":             "debug",
	"log-file":          "logFile",
}

// viperKey resolves a flag name to its config key.
func viperKey(flag string) string {
	if key, ok := flagKeys[flag]; ok {
		return key
	}
	return flag
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config/config.json", "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().StringP("model", "m", "", "model to benchmark (prompted for when omitted)")
	rootCmd.PersistentFlags().Int("serial", 0, "serial run count")
	rootCmd.PersistentFlags().Int("parallel", 0, "parallel run count")
	rootCmd.PersistentFlags().Int("max-loaded-models", 0, "max concurrently loaded models (OLLAMA_MAX_LOADED_MODELS)")
	rootCmd.PersistentFlags().Int("num-parallel", 0, "max parallel requests per model (OLLAMA_NUM_PARALLEL)")
	rootCmd.PersistentFlags().Int("context-length", 0, "context window size (OLLAMA_CONTEXT_LENGTH)")
	rootCmd.PersistentFlags().Int("max-queue", 0, "max request queue depth (OLLAMA_MAX_QUEUE)")
	rootCmd.PersistentFlags().String("ollama-bin", "", "alternate path to the ollama executable")
	rootCmd.PersistentFlags().Bool("markdown", false, "render the report as markdown tables")
	rootCmd.PersistentFlags().Bool("defaults", false, "run the default preset without prompting")
	rootCmd.PersistentFlags().String("export", "", "write phase summaries to this JSON file")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "path to the log file")

	for flag, key := range flagKeys {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads the config file, validating it against the schema
// when present. A missing file is fine; defaults and flags take over.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		if _, err := appconfig.Load(used); err != nil {
			return err
		}
	}
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
