// Package lifecycle admits raw records into the persisted lead pool and keeps
// the pool's scores current. Every operation is a full read-modify-write of
// the pool under the store lock.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/classify"
	"github.com/sells-group/lead-engine/internal/dedup"
	"github.com/sells-group/lead-engine/internal/model"
	"github.com/sells-group/lead-engine/internal/normalize"
	"github.com/sells-group/lead-engine/internal/quality"
	"github.com/sells-group/lead-engine/internal/scorer"
	"github.com/sells-group/lead-engine/internal/store"
)

// IntegratedSource is recorded for collector records that name no source.
const IntegratedSource = "scraper_results"

// ErrNotFound is returned when no lead has the requested ID.
var ErrNotFound = eris.New("lifecycle: lead not found")

// Manager orchestrates admission, re-scoring and reporting over one pool.
type Manager struct {
	store      store.Store
	normalizer *normalize.Normalizer
	classifier *classify.Classifier
	scorer     *scorer.LeadScorer
	enrichment *scorer.EnrichmentScorer
	validator  *quality.Validator

	strategy scorer.Strategy
	now      func() time.Time
	newID    func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for freshness and timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithStrategy selects which scores Rescore recomputes.
func WithStrategy(s scorer.Strategy) Option {
	return func(m *Manager) { m.strategy = s }
}

// WithIDFunc sets the generator for IDs of newly admitted leads.
func WithIDFunc(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// New creates a Manager.
func New(
	st store.Store,
	normalizer *normalize.Normalizer,
	classifier *classify.Classifier,
	leadScorer *scorer.LeadScorer,
	enrichment *scorer.EnrichmentScorer,
	validator *quality.Validator,
	opts ...Option,
) *Manager {
	m := &Manager{
		store:      st,
		normalizer: normalizer,
		classifier: classifier,
		scorer:     leadScorer,
		enrichment: enrichment,
		validator:  validator,
		strategy:   scorer.StrategyAll,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IngestResult counts what happened to a batch of raw records.
type IngestResult struct {
	Received            int      `json:"received"`
	Admitted            int      `json:"admitted"`
	RejectedMissingName int      `json:"rejected_missing_name"`
	RejectedQuality     int      `json:"rejected_quality"`
	RejectedIncomplete  int      `json:"rejected_incomplete,omitempty"`
	Duplicates          int      `json:"duplicates"`
	IDs                 []string `json:"ids,omitempty"`
}

// Ingest normalizes, classifies, gates, dedupes and scores raws, then appends
// the admitted records to the pool. The first occurrence of an identity wins,
// whether it is already persisted or earlier in the batch.
func (m *Manager) Ingest(ctx context.Context, raws []model.RawRecord) (IngestResult, error) {
	res := IngestResult{Received: len(raws)}
	err := m.session(ctx, func(pool []model.Lead) ([]model.Lead, bool, error) {
		seen := dedup.New()
		seen.Seed(pool)
		ids := poolIDs(pool)
		now := m.now()

		for _, raw := range raws {
			if err := ctx.Err(); err != nil {
				return nil, false, eris.Wrap(err, "lifecycle: ingest")
			}
			lead, ok := m.normalizer.Normalize(raw)
			if !ok {
				res.RejectedMissingName++
				continue
			}
			m.classifier.Apply(&lead)
			if !m.validator.Admit(&lead) {
				res.RejectedQuality++
				zap.L().Debug("lifecycle: below quality threshold",
					zap.String("name", lead.Name),
					zap.Int("data_quality_score", lead.DataQualityScore),
				)
				continue
			}
			if !seen.Offer(&lead) {
				res.Duplicates++
				continue
			}
			m.admit(&lead, now, ids)
			pool = append(pool, lead)
			res.Admitted++
			res.IDs = append(res.IDs, lead.ID)
		}
		return pool, res.Admitted > 0, nil
	})
	if err != nil {
		return res, err
	}

	zap.L().Info("lifecycle: ingest complete",
		zap.Int("received", res.Received),
		zap.Int("admitted", res.Admitted),
		zap.Int("rejected_missing_name", res.RejectedMissingName),
		zap.Int("rejected_quality", res.RejectedQuality),
		zap.Int("duplicates", res.Duplicates),
	)
	return res, nil
}

// Integrate admits collector output keyed strictly on name plus address.
// Name, address, website, phone and source are lower-cased and trimmed, records missing either key are
// rejected, and no quality gate applies.
func (m *Manager) Integrate(ctx context.Context, raws []model.RawRecord) (IngestResult, error) {
	res := IngestResult{Received: len(raws)}
	err := m.session(ctx, func(pool []model.Lead) ([]model.Lead, bool, error) {
		seen := dedup.NewStrict()
		seen.Seed(pool)
		ids := poolIDs(pool)
		now := m.now()

		for _, raw := range raws {
			if err := ctx.Err(); err != nil {
				return nil, false, eris.Wrap(err, "lifecycle: integrate")
			}
			raw = lowerRecord(raw)
			if _, ok := raw.String("source"); !ok {
				raw["source"] = IntegratedSource
			}

			lead, ok := m.normalizer.Normalize(raw)
			if !ok {
				res.RejectedMissingName++
				continue
			}
			if !dedup.SignatureOf(&lead).Complete() {
				res.RejectedIncomplete++
				continue
			}
			if !seen.Offer(&lead) {
				res.Duplicates++
				continue
			}
			m.classifier.Apply(&lead)
			lead.AutoIntegrated = true
			lead.DataQualityScore = quality.Score(&lead)
			m.admit(&lead, now, ids)
			pool = append(pool, lead)
			res.Admitted++
			res.IDs = append(res.IDs, lead.ID)
		}
		return pool, res.Admitted > 0, nil
	})
	if err != nil {
		return res, err
	}

	zap.L().Info("lifecycle: integrate complete",
		zap.Int("received", res.Received),
		zap.Int("admitted", res.Admitted),
		zap.Int("rejected_incomplete", res.RejectedIncomplete),
		zap.Int("duplicates", res.Duplicates),
	)
	return res, nil
}

// RescoreResult summarizes a re-score pass.
type RescoreResult struct {
	Strategy   scorer.Strategy        `json:"strategy"`
	Total      int                    `json:"total"`
	MeanScore  float64                `json:"mean_score"`
	Categories map[model.Category]int `json:"categories"`
}

// Rescore recomputes the scores selected by the manager's strategy for every
// pooled lead, in place. Identity, order and non-score fields are untouched.
func (m *Manager) Rescore(ctx context.Context) (RescoreResult, error) {
	res := RescoreResult{Strategy: m.strategy}
	err := m.session(ctx, func(pool []model.Lead) ([]model.Lead, bool, error) {
		now := m.now()
		for i := range pool {
			if err := ctx.Err(); err != nil {
				return nil, false, eris.Wrap(err, "lifecycle: rescore")
			}
			m.score(&pool[i], m.strategy, now)
		}
		res.Total = len(pool)
		res.MeanScore = meanScore(pool)
		res.Categories = countCategories(pool)
		return pool, len(pool) > 0, nil
	})
	if err != nil {
		return res, err
	}

	zap.L().Info("lifecycle: rescore complete",
		zap.String("strategy", string(res.Strategy)),
		zap.Int("total", res.Total),
		zap.Float64("mean_score", res.MeanScore),
	)
	return res, nil
}

// UpdateEnrichment adds social handles and pain points to one lead and
// re-scores it. Invalid handles are dropped. It returns the updated lead.
func (m *Manager) UpdateEnrichment(ctx context.Context, id string, handles map[string]string, painPoints []string) (model.Lead, error) {
	var updated model.Lead
	err := m.session(ctx, func(pool []model.Lead) ([]model.Lead, bool, error) {
		i := indexOf(pool, id)
		if i < 0 {
			return nil, false, eris.Wrapf(ErrNotFound, "lifecycle: update enrichment %q", id)
		}
		lead := &pool[i]
		for platform, handle := range handles {
			handle = strings.TrimSpace(handle)
			if !normalize.ValidateSocialHandle(platform, handle) {
				zap.L().Debug("lifecycle: dropping social handle",
					zap.String("platform", platform),
					zap.String("handle", handle),
				)
				continue
			}
			lead.AddSocialHandle(strings.ToLower(platform), handle)
		}
		for _, tag := range painPoints {
			lead.AddPainPoint(strings.TrimSpace(tag))
		}
		m.score(lead, scorer.StrategyAll, m.now())
		updated = *lead
		return pool, true, nil
	})
	return updated, err
}

// session runs fn over the loaded pool under the store lock and saves the
// returned pool when fn reports a change.
func (m *Manager) session(ctx context.Context, fn func(pool []model.Lead) ([]model.Lead, bool, error)) error {
	unlock, err := m.store.Lock(ctx)
	if err != nil {
		return eris.Wrap(err, "lifecycle: lock pool")
	}
	defer func() {
		if err := unlock(); err != nil {
			zap.L().Warn("lifecycle: unlock pool", zap.Error(err))
		}
	}()

	pool, err := m.store.Load(ctx)
	if err != nil {
		return eris.Wrap(err, "lifecycle: load pool")
	}
	pool, changed, err := fn(pool)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return eris.Wrap(m.store.Save(ctx, pool), "lifecycle: save pool")
}

// admit stamps identity on a new lead and scores it with both strategies. An
// incoming ID is kept unless it is already taken in ids, which is updated.
func (m *Manager) admit(lead *model.Lead, now time.Time, ids map[string]bool) {
	if lead.ID != "" && ids[lead.ID] {
		zap.L().Debug("lifecycle: replacing duplicate lead id", zap.String("id", lead.ID))
		lead.ID = ""
	}
	for lead.ID == "" || ids[lead.ID] {
		lead.ID = m.newID()
	}
	ids[lead.ID] = true
	if lead.CreatedAt == nil {
		lead.CreatedAt = model.NewTimestamp(now.UTC())
	}
	m.score(lead, scorer.StrategyAll, now)
}

func (m *Manager) score(lead *model.Lead, s scorer.Strategy, now time.Time) {
	if s.Pool() {
		scorer.Apply(lead, m.scorer.Score(lead, now), now)
	}
	if s.Enrichment() {
		scorer.ApplyEnrichment(lead, m.enrichment.Score(lead))
	}
}

// integratedKeys are the fields lower-cased and trimmed before strict
// integration.
var integratedKeys = func() map[string]bool {
	keys := make(map[string]bool)
	for _, k := range []string{"name", "address", "website", "phone", "source"} {
		for _, alias := range model.Aliases(k) {
			keys[alias] = true
		}
	}
	return keys
}()

// lowerRecord returns a copy of raw with the identity and contact strings
// lower-cased and trimmed. Every other value is copied unchanged.
func lowerRecord(raw model.RawRecord) model.RawRecord {
	out := make(model.RawRecord, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok && integratedKeys[k] {
			out[k] = strings.ToLower(strings.TrimSpace(s))
			continue
		}
		out[k] = v
	}
	return out
}

func poolIDs(pool []model.Lead) map[string]bool {
	ids := make(map[string]bool, len(pool))
	for i := range pool {
		if pool[i].ID != "" {
			ids[pool[i].ID] = true
		}
	}
	return ids
}

func indexOf(pool []model.Lead, id string) int {
	if id == "" {
		return -1
	}
	for i := range pool {
		if pool[i].ID == id {
			return i
		}
	}
	return -1
}
