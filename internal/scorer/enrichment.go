package scorer

import "github.com/sells-group/lead-engine/internal/model"

// EnrichmentResult is the outcome of scoring a collected record.
type EnrichmentResult struct {
	Total     int            `json:"score"`
	Breakdown map[string]int `json:"breakdown"`
}

// Thresholds used by the enrichment scorer.
const (
	highFollowers      = 10_000
	mediumFollowers    = 1_000
	engagementBaseline = 0.03
	pointsPerPainPoint = 5
)

// EnrichmentScorer scores collected records on contact channels, social reach,
// engagement, pain points and industry.
type EnrichmentScorer struct{}

// NewEnrichmentScorer returns an EnrichmentScorer.
func NewEnrichmentScorer() *EnrichmentScorer {
	return &EnrichmentScorer{}
}

// Score returns the clamped total and the points awarded per signal.
func (s *EnrichmentScorer) Score(lead *model.Lead) EnrichmentResult {
	breakdown := make(map[string]int)

	if lead.Email != nil {
		breakdown["email"] = 20
	}
	if lead.Phone != nil {
		breakdown["phone"] = 15
	}
	if lead.Website != nil {
		breakdown["website"] = 10
	}

	if lead.Followers != nil {
		switch f := *lead.Followers; {
		case f > highFollowers:
			breakdown["high_followers"] = 15
		case f > mediumFollowers:
			breakdown["medium_followers"] = 10
		case f > 0:
			breakdown["low_followers"] = 5
		}
	}

	if er := model.Deref(lead.EngagementRate); er > engagementBaseline {
		breakdown["high_engagement"] = 10
	}

	// Pain points are a set; the per-point bonus is uncapped before the clamp.
	if n := len(uniqueStrings(lead.PainPoints)); n > 0 {
		breakdown["pain_points"] = n * pointsPerPainPoint
	}

	if present(lead.Industry) {
		breakdown["industry"] = 5
	}

	var total int
	for _, v := range breakdown {
		total += v
	}
	return EnrichmentResult{Total: min(total, 100), Breakdown: breakdown}
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
