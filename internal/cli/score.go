package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"wallet-credit-scores/internal/app"
)

var (
	scoreInput  string
	scoreOutput string
	scoreModels string
	scoreDryRun bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a batch of wallet transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if scoreInput == "" {
			return errors.New("--input is required")
		}

		opts := app.ScoreOptions{
			InputPath:  scoreInput,
			OutputPath: scoreOutput,
			ModelsDir:  scoreModels,
			DryRun:     scoreDryRun,
		}

		return getApp().Score(cmd.Context(), opts)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreInput, "input", "", "Path to the JSON transaction batch")
	scoreCmd.Flags().StringVar(&scoreOutput, "output", "", "Path to write the wallet score mapping (defaults to config)")
	scoreCmd.Flags().StringVar(&scoreModels, "models", "", "Directory holding the trained artifacts (defaults to config)")
	scoreCmd.Flags().BoolVar(&scoreDryRun, "dry-run", false, "Skip persistence and alerting")
}
