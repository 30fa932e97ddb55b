package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/collector"
	"github.com/sells-group/lead-engine/internal/model"
)

var (
	ingestDir   string
	ingestLimit int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Admit raw records from JSON, CSV or XLSX files into the pool",
	Long:  "Normalizes, classifies, quality-gates, dedupes and scores raw records. Without file arguments every file in --dir is read.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		dir := ingestDir
		if dir == "" {
			dir = cfg.Collector.ResultsDir
		}
		raws, err := readInputs(ctx, args, dir, collector.ModeGeneric, ingestLimit)
		if err != nil {
			return err
		}

		env, err := initEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Manager.Ingest(ctx, raws)
		if err != nil {
			return eris.Wrap(err, "ingest")
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderIngestResult(res)) //nolint:errcheck
		return nil
	},
}

// readInputs reads the named files, or every collector file in dir when no
// files are named. Named files must parse; directory files that do not are
// skipped. A positive limit truncates the result.
func readInputs(ctx context.Context, files []string, dir string, mode collector.Mode, limit int) ([]model.RawRecord, error) {
	if len(files) == 0 {
		batch, err := collector.LoadDir(ctx, dir, mode, limit)
		if err != nil {
			return nil, err
		}
		zap.L().Info("read collector directory",
			zap.String("dir", dir),
			zap.Int("files", len(batch.Files)),
			zap.Int("skipped", len(batch.Skipped)),
			zap.Int("records", len(batch.Records)),
		)
		return batch.Records, nil
	}

	var raws []model.RawRecord
	for _, path := range files {
		recs, err := collector.ReadFile(ctx, path, mode)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}
		raws = append(raws, recs...)
	}
	if limit > 0 && len(raws) > limit {
		raws = raws[:limit]
	}
	return raws, nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "collector output directory (default from config)")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "max records to read (0 = all)")
	rootCmd.AddCommand(ingestCmd)
}
