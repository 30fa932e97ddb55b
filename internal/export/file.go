package export

import (
	"cmp"
	"context"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-engine/internal/model"
)

// CSVExporter writes leads to a timestamped CSV file under Dir.
type CSVExporter struct {
	Dir      string
	MinScore int
	Now      func() time.Time
}

// Name implements Exporter.
func (e *CSVExporter) Name() string { return "csv" }

// Export implements Exporter.
func (e *CSVExporter) Export(ctx context.Context, leads []model.Lead) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, eris.Wrap(err, "export: csv")
	}
	path, err := outputPath(e.Dir, ".csv", e.MinScore, e.Now)
	if err != nil {
		return Result{}, err
	}

	f, err := os.Create(path)
	if err != nil {
		return Result{}, eris.Wrapf(err, "export: create %s", path)
	}
	if err := WriteCSV(f, leads); err != nil {
		_ = f.Close()
		return Result{}, err
	}
	if err := f.Close(); err != nil {
		return Result{}, eris.Wrapf(err, "export: close %s", path)
	}
	return Result{Exported: len(leads), Location: path}, nil
}

// XLSXExporter writes leads plus summary sheets to a timestamped workbook.
type XLSXExporter struct {
	Dir      string
	MinScore int
	Now      func() time.Time
}

// Name implements Exporter.
func (e *XLSXExporter) Name() string { return "xlsx" }

// Export implements Exporter.
func (e *XLSXExporter) Export(ctx context.Context, leads []model.Lead) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, eris.Wrap(err, "export: xlsx")
	}
	path, err := outputPath(e.Dir, ".xlsx", e.MinScore, e.Now)
	if err != nil {
		return Result{}, err
	}
	if err := WriteXLSX(path, leads); err != nil {
		return Result{}, err
	}
	return Result{Exported: len(leads), Location: path}, nil
}

func outputPath(dir, ext string, minScore int, now func() time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "export: create dir %s", dir)
	}
	if now == nil {
		now = time.Now
	}
	return filepath.Join(dir, Filename(ext, minScore, now())), nil
}

// Count is a label with its number of occurrences.
type Count struct {
	Label string
	N     int
}

// ScoreBins are the total-score buckets of the distribution sheet.
var ScoreBins = []struct {
	Label    string
	Min, Max int
}{
	{"0-20", 0, 20},
	{"21-40", 21, 40},
	{"41-60", 41, 60},
	{"61-80", 61, 80},
	{"81-100", 81, 100},
}

// PlatformCounts counts leads per platform. Leads without one count as
// "unknown".
func PlatformCounts(leads []model.Lead) []Count {
	return countBy(leads, func(l *model.Lead) []string {
		if l.Platform == "" {
			return []string{"unknown"}
		}
		return []string{l.Platform}
	}, 0)
}

// ScoreDistribution counts leads per score bin, in bin order.
func ScoreDistribution(leads []model.Lead) []Count {
	out := make([]Count, len(ScoreBins))
	for i, b := range ScoreBins {
		out[i].Label = b.Label
	}
	for i := range leads {
		s := leads[i].TotalScore
		for j, b := range ScoreBins {
			if s >= b.Min && s <= b.Max {
				out[j].N++
				break
			}
		}
	}
	return out
}

// TopIndustries returns the n most common industries.
func TopIndustries(leads []model.Lead, n int) []Count {
	return countBy(leads, func(l *model.Lead) []string {
		if l.Industry == nil || *l.Industry == "" {
			return nil
		}
		return []string{*l.Industry}
	}, n)
}

// TopPainPoints returns the n most common pain-point tags.
func TopPainPoints(leads []model.Lead, n int) []Count {
	return countBy(leads, func(l *model.Lead) []string { return l.PainPoints }, n)
}

// ContactStats counts leads holding each kind of contact detail.
func ContactStats(leads []model.Lead) []Count {
	out := []Count{
		{Label: "Has Email"},
		{Label: "Has Phone"},
		{Label: "Has Website"},
		{Label: "Has Address"},
		{Label: "Has Social Handles"},
	}
	for i := range leads {
		l := &leads[i]
		if l.Email != nil {
			out[0].N++
		}
		if l.Phone != nil {
			out[1].N++
		}
		if l.Website != nil {
			out[2].N++
		}
		if l.Address != nil {
			out[3].N++
		}
		if len(l.SocialHandles) > 0 {
			out[4].N++
		}
	}
	return out
}

// countBy tallies labels and sorts by count descending, then label. A
// positive limit keeps only the first limit entries.
func countBy(leads []model.Lead, labels func(*model.Lead) []string, limit int) []Count {
	counts := make(map[string]int)
	for i := range leads {
		for _, label := range labels(&leads[i]) {
			counts[label]++
		}
	}
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, N: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.N, a.N); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
