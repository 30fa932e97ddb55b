package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/config"
	"github.com/sells-group/lead-engine/internal/export"
	"github.com/sells-group/lead-engine/internal/lifecycle"
	"github.com/sells-group/lead-engine/internal/resilience"
)

var (
	exportTargets  []string
	exportMinScore int
	exportDir      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export pooled leads to CSV, XLSX, Notion and/or Salesforce",
	Long:  "Runs every selected target concurrently over the same leads and reports success per target. The pool is never modified.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cmd.Flags().Changed("min-score") {
			cfg.Export.MinScore = exportMinScore
		}
		if exportDir != "" {
			cfg.Export.Dir = exportDir
		}
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		exporters, err := buildExporters(cfg, exportTargets)
		if err != nil {
			return err
		}

		env, err := initEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		outcomes, err := runExport(ctx, env.Manager, exporters, cfg.Export.MinScore)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderOutcomes(outcomes)) //nolint:errcheck

		var failed []string
		for _, o := range outcomes {
			if !o.OK() {
				failed = append(failed, o.Target)
			}
		}
		if len(failed) > 0 {
			return eris.Errorf("export failed for %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

// runExport loads the pool, applies the score floor and fans out to every
// exporter.
func runExport(ctx context.Context, mgr *lifecycle.Manager, exporters []export.Exporter, minScore int) ([]export.Outcome, error) {
	leads, err := mgr.Leads(ctx, lifecycle.Filter{})
	if err != nil {
		return nil, eris.Wrap(err, "export: load leads")
	}
	selected := export.FilterMinScore(leads, minScore)
	zap.L().Info("exporting leads",
		zap.Int("pool", len(leads)),
		zap.Int("selected", len(selected)),
		zap.Int("min_score", minScore),
		zap.Int("targets", len(exporters)),
	)
	return export.RunAll(ctx, selected, exporters), nil
}

// buildExporters creates one exporter per named target. CRM credentials are
// checked here so a misconfigured target fails before anything is written.
func buildExporters(c *config.Config, targets []string) ([]export.Exporter, error) {
	if len(targets) == 0 {
		return nil, eris.New("export: no targets selected")
	}

	seen := make(map[string]bool, len(targets))
	var out []export.Exporter
	for _, t := range targets {
		t = strings.ToLower(strings.TrimSpace(t))
		if seen[t] {
			continue
		}
		seen[t] = true

		switch t {
		case "csv":
			out = append(out, &export.CSVExporter{Dir: c.Export.Dir, MinScore: c.Export.MinScore})
		case "xlsx":
			out = append(out, &export.XLSXExporter{Dir: c.Export.Dir, MinScore: c.Export.MinScore})
		case "notion":
			client, err := initNotion(c)
			if err != nil {
				return nil, err
			}
			out = append(out, export.NewNotionExporter(client, c.Notion.LeadDB,
				resilience.ForExporter("notion", c.Export.MaxAttempts)))
		case "salesforce":
			client, err := initSalesforce(c)
			if err != nil {
				return nil, err
			}
			var opts []export.SalesforceOption
			if c.Salesforce.ScoreField != "" {
				opts = append(opts, export.WithScoreField(c.Salesforce.ScoreField))
			}
			out = append(out, export.NewSalesforceExporter(client,
				resilience.ForExporter("salesforce", c.Export.MaxAttempts), opts...))
		default:
			return nil, eris.Errorf("export: unknown target %q (want csv, xlsx, notion or salesforce)", t)
		}
	}
	return out, nil
}

func init() {
	exportCmd.Flags().StringSliceVar(&exportTargets, "targets", []string{"csv"}, "comma-separated targets: csv, xlsx, notion, salesforce")
	exportCmd.Flags().IntVar(&exportMinScore, "min-score", 0, "only export leads scoring at least this (default from config)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory for file exports (default from config)")
	rootCmd.AddCommand(exportCmd)
}
