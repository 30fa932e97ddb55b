package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	enrichHandles    map[string]string
	enrichPainPoints []string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <lead-id>",
	Short: "Add social handles and pain points to a pooled lead and re-score it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(enrichHandles) == 0 && len(enrichPainPoints) == 0 {
			return eris.New("enrich: nothing to add (use --handle or --pain-point)")
		}
		if err := cfg.Validate("rescore"); err != nil {
			return err
		}

		env, err := initEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		lead, err := env.Manager.UpdateEnrichment(ctx, args[0], enrichHandles, enrichPainPoints)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: score %d (%s), enrichment %d\n", //nolint:errcheck
			lead.Name, lead.TotalScore, lead.ScoreCategory, lead.EnrichmentScore)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringToStringVar(&enrichHandles, "handle", nil, "social handle as platform=handle (repeatable)")
	enrichCmd.Flags().StringSliceVar(&enrichPainPoints, "pain-point", nil, "pain-point tag (repeatable)")
	rootCmd.AddCommand(enrichCmd)
}
