// internal/commands/show_config.go
package ollamabench

import (
	"github.com/k0kubun/pp"
	"github.com/mwiater/ollamabench/internal/appconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// showConfigCmd implements the 'show config' command, which displays the current configuration settings.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		fallback := appconfig.Config{
			Model:        viper.GetString("model"),
			SerialRuns:   viper.GetInt("serialRuns"),
			ParallelRuns: viper.GetInt("parallelRuns"),
			OllamaBinary: viper.GetString("ollamaBinary"),
			Markdown:     viper.GetBool("markdown"),
			ExportPath:   viper.GetString("export"),
			Debug:        viper.GetBool("debug"),
			LogFile:      viper.GetString("logFile"),
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), viper.ConfigFileUsed(), GetConfig(), fallback)

		if DebugEnabled() {
			pp.Println(GetConfig())
		}
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}
