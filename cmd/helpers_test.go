package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-engine/internal/classify"
	"github.com/sells-group/lead-engine/internal/lifecycle"
	"github.com/sells-group/lead-engine/internal/model"
	"github.com/sells-group/lead-engine/internal/normalize"
	"github.com/sells-group/lead-engine/internal/quality"
	"github.com/sells-group/lead-engine/internal/scorer"
	"github.com/sells-group/lead-engine/internal/store"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

// newTestManager returns a manager over a JSON pool seeded from raws.
func newTestManager(t *testing.T, raws ...model.RawRecord) *lifecycle.Manager {
	t.Helper()
	ctx := context.Background()

	st := store.NewJSON(filepath.Join(t.TempDir(), "leads.json"))
	require.NoError(t, st.Migrate(ctx))

	mgr := lifecycle.New(
		st,
		normalize.New("DE"),
		classify.New(classify.DefaultRules()),
		scorer.NewLeadScorer(scorer.DefaultVocabulary()),
		scorer.NewEnrichmentScorer(),
		quality.NewValidator(0),
		lifecycle.WithClock(func() time.Time { return testNow }),
	)
	if len(raws) > 0 {
		_, err := mgr.Ingest(ctx, raws)
		require.NoError(t, err)
	}
	return mgr
}

func seedRecords() []model.RawRecord {
	return []model.RawRecord{
		{
			"name":     "Hotel Adina",
			"email":    "info@adina.eu",
			"phone":    "+49 30 1234567",
			"website":  "https://adina.eu",
			"address":  "Friedrichstr. 1, Berlin",
			"location": "Berlin",
			"source":   "manual_verified",
			"verified": true,
		},
		{"name": "Zahnarzt Praxis", "email": "praxis@zahn.de"},
		{"name": "Nameless Corner"},
	}
}
