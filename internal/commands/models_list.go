// internal/commands/models_list.go
package ollamabench

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var modelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

// listModelsCmd implements 'list models', which enumerates the models
// available to the local ollama installation.
var listModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List locally available models",
	Long:  `The 'models' subcommand runs 'ollama list' and prints the name of every locally available model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		invoker, err := newInvoker(GetConfig())
		if err != nil {
			return err
		}

		models := availableModels(cmd.Context(), invoker)
		if len(models) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No models found.")
			return nil
		}
		for _, model := range models {
			fmt.Fprintln(cmd.OutOrStdout(), modelStyle.Render(model))
		}
		return nil
	},
}

func init() {
	listCmd.AddCommand(listModelsCmd)
}
