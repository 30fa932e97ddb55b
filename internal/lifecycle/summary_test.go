package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-engine/internal/model"
)

func scoredPool() []model.Lead {
	return []model.Lead{
		{ID: "a", Name: "a", TotalScore: 63, ScoreCategory: model.CategoryWarm},
		{ID: "b", Name: "b", TotalScore: 95, ScoreCategory: model.CategoryHot},
		{ID: "c", Name: "c", TotalScore: 63, ScoreCategory: model.CategoryWarm},
		{ID: "d", Name: "d", TotalScore: 12, ScoreCategory: model.CategoryPoor},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(scoredPool(), 3)

	assert.Equal(t, 4, s.Total)
	assert.InDelta(t, 58.25, s.MeanScore, 0.001)
	assert.Equal(t, map[model.Category]int{
		model.CategoryHot:  1,
		model.CategoryWarm: 2,
		model.CategoryCold: 0,
		model.CategoryPoor: 1,
	}, s.Categories)

	var ids []string
	for _, l := range s.Top {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids, "ties keep pool order")
}

func TestSummarize_DoesNotReorderInput(t *testing.T) {
	pool := scoredPool()
	_ = Summarize(pool, 10)
	assert.Equal(t, "a", pool[0].ID)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, 0)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.MeanScore)
	assert.Empty(t, s.Top)
	assert.Len(t, s.Categories, 4)
}

func TestSummarize_DefaultTopN(t *testing.T) {
	pool := make([]model.Lead, 15)
	for i := range pool {
		pool[i].TotalScore = i
	}
	s := Summarize(pool, 0)
	require.Len(t, s.Top, DefaultTopN)
	assert.Equal(t, 14, s.Top[0].TotalScore)
}

func TestManager_SummaryLeadsGet(t *testing.T) {
	m, st := newTestManager(t, 0)
	ctx := context.Background()
	require.NoError(t, st.Save(ctx, scoredPool()))

	s, err := m.Summary(ctx, 1)
	require.NoError(t, err)
	require.Len(t, s.Top, 1)
	assert.Equal(t, "b", s.Top[0].ID)

	warm, err := m.Leads(ctx, Filter{Category: model.CategoryWarm})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names(warm))

	high, err := m.Leads(ctx, Filter{MinScore: 60, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(high))

	lead, err := m.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 12, lead.TotalScore)

	_, err = m.Get(ctx, "zzz")
	assert.ErrorIs(t, err, ErrNotFound)
}
