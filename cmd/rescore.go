package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var rescoreStrategy string

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Recompute scores and tiers for every pooled lead in place",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if rescoreStrategy != "" {
			cfg.Scoring.Strategy = rescoreStrategy
		}
		if err := cfg.Validate("rescore"); err != nil {
			return err
		}

		env, err := initEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Manager.Rescore(ctx)
		if err != nil {
			return eris.Wrap(err, "rescore")
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderRescoreResult(res)) //nolint:errcheck
		return nil
	},
}

func init() {
	rescoreCmd.Flags().StringVar(&rescoreStrategy, "strategy", "", "pool, enrichment or all (default from config)")
	rootCmd.AddCommand(rescoreCmd)
}
