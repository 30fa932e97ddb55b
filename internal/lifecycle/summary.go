package lifecycle

import (
	"cmp"
	"context"
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-engine/internal/model"
)

// DefaultTopN is the size of the top list when none is requested.
const DefaultTopN = 10

// Summary is a read-only aggregate over the pool.
type Summary struct {
	Total      int                    `json:"total"`
	MeanScore  float64                `json:"mean_score"`
	Categories map[model.Category]int `json:"categories"`
	Top        []model.Lead           `json:"top"`
}

// Summarize aggregates leads. Top holds at most topN leads by descending
// total score; ties keep pool order. A non-positive topN selects DefaultTopN.
func Summarize(leads []model.Lead, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}
	top := slices.Clone(leads)
	slices.SortStableFunc(top, func(a, b model.Lead) int {
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})
	if len(top) > topN {
		top = top[:topN]
	}
	return Summary{
		Total:      len(leads),
		MeanScore:  meanScore(leads),
		Categories: countCategories(leads),
		Top:        top,
	}
}

// Summary loads the pool and aggregates it.
func (m *Manager) Summary(ctx context.Context, topN int) (Summary, error) {
	pool, err := m.store.Load(ctx)
	if err != nil {
		return Summary{}, eris.Wrap(err, "lifecycle: load pool")
	}
	return Summarize(pool, topN), nil
}

// Filter selects leads for listing. Zero values match everything.
type Filter struct {
	Category model.Category
	MinScore int
	Limit    int
}

// Match reports whether lead passes the filter.
func (f Filter) Match(lead *model.Lead) bool {
	if f.Category != "" && lead.ScoreCategory != f.Category {
		return false
	}
	return lead.TotalScore >= f.MinScore
}

// Leads returns the pooled leads matching f in pool order.
func (m *Manager) Leads(ctx context.Context, f Filter) ([]model.Lead, error) {
	pool, err := m.store.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "lifecycle: load pool")
	}
	out := make([]model.Lead, 0, len(pool))
	for i := range pool {
		if !f.Match(&pool[i]) {
			continue
		}
		out = append(out, pool[i])
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// Get returns the lead with id, or ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (model.Lead, error) {
	pool, err := m.store.Load(ctx)
	if err != nil {
		return model.Lead{}, eris.Wrap(err, "lifecycle: load pool")
	}
	i := indexOf(pool, id)
	if i < 0 {
		return model.Lead{}, eris.Wrapf(ErrNotFound, "lifecycle: get %q", id)
	}
	return pool[i], nil
}

func meanScore(leads []model.Lead) float64 {
	if len(leads) == 0 {
		return 0
	}
	var sum int
	for i := range leads {
		sum += leads[i].TotalScore
	}
	return float64(sum) / float64(len(leads))
}

// countCategories counts leads per tier. Every tier is present in the map.
func countCategories(leads []model.Lead) map[model.Category]int {
	counts := make(map[model.Category]int, len(model.Categories))
	for _, c := range model.Categories {
		counts[c] = 0
	}
	for i := range leads {
		if leads[i].ScoreCategory != "" {
			counts[leads[i].ScoreCategory]++
		}
	}
	return counts
}
