package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-engine/internal/collector"
)

var (
	integrateDir   string
	integrateLimit int
)

var integrateCmd = &cobra.Command{
	Use:   "integrate [files...]",
	Short: "Merge scraper output into the pool keyed on name and address",
	Long:  "Reads scraper CSV/JSON output (Name and Address columns required), drops records already pooled under the same name and address, and admits the rest without the quality gate.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("integrate"); err != nil {
			return err
		}

		dir := integrateDir
		if dir == "" {
			dir = cfg.Collector.ResultsDir
		}
		raws, err := readInputs(ctx, args, dir, collector.ModeScraper, integrateLimit)
		if err != nil {
			return err
		}

		env, err := initEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Manager.Integrate(ctx, raws)
		if err != nil {
			return eris.Wrap(err, "integrate")
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderIngestResult(res)) //nolint:errcheck
		return nil
	},
}

func init() {
	integrateCmd.Flags().StringVar(&integrateDir, "dir", "", "scraper results directory (default from config)")
	integrateCmd.Flags().IntVar(&integrateLimit, "limit", 0, "max records to read (0 = all)")
	rootCmd.AddCommand(integrateCmd)
}
