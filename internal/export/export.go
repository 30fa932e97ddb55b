// Package export writes scored leads to files and CRMs. Exporters only read
// leads; nothing here mutates the pool.
package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-engine/internal/model"
)

// Exporter delivers leads to one target.
type Exporter interface {
	Name() string
	Export(ctx context.Context, leads []model.Lead) (Result, error)
}

// Result describes what an exporter delivered.
type Result struct {
	Exported int    `json:"exported"`
	Created  int    `json:"created,omitempty"`
	Updated  int    `json:"updated,omitempty"`
	Failed   int    `json:"failed,omitempty"`
	Location string `json:"location,omitempty"`
}

// Outcome is the per-target report of RunAll.
type Outcome struct {
	Target string `json:"target"`
	Result Result `json:"result"`
	Err    error  `json:"-"`
}

// OK reports whether the target succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// FilterMinScore returns the leads whose total score is at least minScore, in
// their original order. A non-positive minScore keeps everything.
func FilterMinScore(leads []model.Lead, minScore int) []model.Lead {
	if minScore <= 0 {
		return leads
	}
	out := make([]model.Lead, 0, len(leads))
	for i := range leads {
		if leads[i].TotalScore >= minScore {
			out = append(out, leads[i])
		}
	}
	return out
}

// RunAll runs every exporter concurrently over the same leads. A failing
// target does not stop the others; each outcome carries its own error.
func RunAll(ctx context.Context, leads []model.Lead, exporters []Exporter) []Outcome {
	outcomes := make([]Outcome, len(exporters))
	g, gctx := errgroup.WithContext(ctx)
	for i, exp := range exporters {
		g.Go(func() error {
			start := time.Now()
			res, err := exp.Export(gctx, leads)
			outcomes[i] = Outcome{Target: exp.Name(), Result: res, Err: err}
			if err != nil {
				zap.L().Error("export: target failed",
					zap.String("target", exp.Name()),
					zap.Error(err),
				)
				return nil
			}
			zap.L().Info("export: target complete",
				zap.String("target", exp.Name()),
				zap.Int("exported", res.Exported),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// Filename builds a timestamped export file name. A positive minScore marks
// the file as a high-score subset.
func Filename(ext string, minScore int, now time.Time) string {
	ts := now.Format("20060102_150405")
	if minScore > 0 {
		return fmt.Sprintf("high_score_leads_%d+_%s%s", minScore, ts, ext)
	}
	return fmt.Sprintf("leads_export_%s%s", ts, ext)
}
