package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-engine/internal/lifecycle"
)

var (
	reportTop    int
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a summary of the lead pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("report"); err != nil {
			return err
		}

		env, err := initEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		s, err := env.Manager.Summary(ctx, reportTop)
		if err != nil {
			return eris.Wrap(err, "report")
		}
		return writeSummary(cmd.OutOrStdout(), s, reportFormat)
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportTop, "top", lifecycle.DefaultTopN, "number of top leads to list")
	reportCmd.Flags().StringVar(&reportFormat, "format", "table", "output format: table or json")
	rootCmd.AddCommand(reportCmd)
}
