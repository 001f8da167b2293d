package cli

import (
	"github.com/spf13/cobra"

	"wallet-credit-scores/internal/app"
)

var (
	exportRunID   int64
	exportPNGPath string
	exportCSVPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a persisted run's scores as CSV and/or PNG histogram",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			RunID:   exportRunID,
			PNGPath: exportPNGPath,
			CSVPath: exportCSVPath,
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().Int64Var(&exportRunID, "run", 0, "Run id to export (defaults to the latest)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write the score-distribution PNG")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write the scores CSV")
}
