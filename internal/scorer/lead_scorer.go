package scorer

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-engine/internal/model"
	"github.com/sells-group/lead-engine/internal/normalize"
)

// Result is the outcome of scoring a pooled record.
type Result struct {
	Total   int                `json:"total_score"`
	Factors model.ScoreFactors `json:"factors"`
}

// LeadScorer scores pooled records on completeness, verification, business
// value, location, source and freshness. It is safe for concurrent use.
type LeadScorer struct {
	vocab Vocabulary
}

// NewLeadScorer returns a scorer over a private copy of vocab.
func NewLeadScorer(vocab Vocabulary) *LeadScorer {
	return &LeadScorer{vocab: vocab.Clone()}
}

// Vocabulary returns a copy of the scorer's vocabulary.
func (s *LeadScorer) Vocabulary() Vocabulary {
	return s.vocab.Clone()
}

// Score computes the factors and weighted total for lead as of now. Only the
// freshness factor depends on now.
func (s *LeadScorer) Score(lead *model.Lead, now time.Time) Result {
	completeness := scoreCompleteness(lead)
	verification := scoreVerification(lead)
	business := s.scoreBusinessValue(lead)
	location := s.scoreLocation(lead)
	source := s.scoreSource(lead)
	freshness := scoreFreshness(lead, now)

	w := s.vocab.Weights
	total := completeness*w.Completeness +
		verification*w.Verification +
		business*w.BusinessValue +
		location*w.Location +
		source*w.Source +
		freshness*w.Freshness

	return Result{
		Total: round(clamp(total)),
		Factors: model.ScoreFactors{
			Completeness:  round(completeness),
			Verification:  round(verification),
			BusinessValue: round(business),
			Location:      round(location),
			Source:        round(source),
			Freshness:     round(freshness),
		},
	}
}

// scoreCompleteness rewards the presence of identity and contact fields.
func scoreCompleteness(lead *model.Lead) float64 {
	var score float64
	if strings.TrimSpace(lead.Name) != "" {
		score += 20
	}
	if strings.Contains(model.Deref(lead.Email), "@") {
		score += 25
	}
	if present(lead.Phone) {
		score += 20
	}
	if site := model.Deref(lead.Website); strings.Contains(site, "http") || strings.Contains(site, ".") {
		score += 20
	}
	if present(lead.Location) {
		score += 10
	}
	if present(lead.BusinessType) {
		score += 5
	}
	return clamp(score)
}

// scoreVerification combines the verified flag and the AI score, raised to
// the independent quality score when that is larger.
func scoreVerification(lead *model.Lead) float64 {
	var score float64
	if lead.Verified {
		score += 80
	}
	if ai := model.Deref(lead.AIScore); ai > 0 {
		score += math.Min(ai/10, 20)
	}
	if q := model.Deref(lead.QualityScore); q > score {
		score = q
	}
	return clamp(score)
}

func (s *LeadScorer) scoreBusinessValue(lead *model.Lead) float64 {
	score := 40.0

	bt := fold(model.Deref(lead.BusinessType))
	switch {
	case containsAny(bt, s.vocab.HighValueTypes):
		score += 40
	case containsAny(bt, s.vocab.MediumValueTypes):
		score += 20
	}

	if rev := model.Deref(lead.RevenueEstimate); rev > 0 {
		switch {
		case rev > 1_000_000:
			score += 20
		case rev > 500_000:
			score += 15
		case rev > 100_000:
			score += 10
		default:
			score += 5
		}
	}

	if containsAny(fold(lead.Name), s.vocab.PremiumBrands) {
		score += 20
	}
	return clamp(score)
}

func (s *LeadScorer) scoreLocation(lead *model.Lead) float64 {
	score := 50.0
	loc := fold(model.Deref(lead.Location))

	switch {
	case containsAny(loc, s.vocab.PremiumCities):
		score += 40
	case containsAny(loc, s.vocab.GoodCities):
		score += 20
	}
	if containsAny(loc, s.vocab.PremiumDistricts) {
		score += 10
	}
	return clamp(score)
}

// scoreSource applies the first matching source tier. Unknown sources keep
// the base score.
func (s *LeadScorer) scoreSource(lead *model.Lead) float64 {
	score := 50.0
	src := fold(lead.Source)
	for _, tier := range s.vocab.SourceTiers {
		if src != "" && tier.Match != "" && strings.Contains(src, tier.Match) {
			score += float64(tier.Bonus)
			break
		}
	}
	if lead.AutoIntegrated {
		score += 10
	}
	return clamp(score)
}

// Neutral freshness for records without a usable creation time.
const neutralFreshness = 50

// scoreFreshness decays with whole days elapsed since creation.
func scoreFreshness(lead *model.Lead, now time.Time) float64 {
	if lead.CreatedAt == nil {
		return neutralFreshness
	}
	if !lead.CreatedAt.Valid() {
		zap.L().Debug("scorer: unparseable created_at, using neutral freshness",
			zap.String("lead_id", lead.ID),
			zap.String("created_at", lead.CreatedAt.Raw),
		)
		return neutralFreshness
	}

	days := math.Floor(now.Sub(lead.CreatedAt.Time).Hours() / 24)
	switch {
	case days <= 1:
		return 100
	case days <= 7:
		return 90
	case days <= 30:
		return 70
	case days <= 90:
		return 50
	case days <= 180:
		return 30
	default:
		return 10
	}
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func fold(s string) string {
	return normalize.NormalizeName(s)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(v, 100))
}

// round rounds half away from zero.
func round(v float64) int {
	return int(math.Round(v))
}
