package scorer

import (
	"time"

	"github.com/sells-group/lead-engine/internal/model"
)

// CategoryInfo describes the tier a total score falls into.
type CategoryInfo struct {
	Name     model.Category `json:"category"`
	Label    string         `json:"label"`
	Color    string         `json:"color"`
	Priority int            `json:"priority"`
}

var categoryBands = []struct {
	min  int
	info CategoryInfo
}{
	{80, CategoryInfo{Name: model.CategoryHot, Label: "Hot Lead", Color: "#ef4444", Priority: 1}},
	{60, CategoryInfo{Name: model.CategoryWarm, Label: "Warm Lead", Color: "#f97316", Priority: 2}},
	{40, CategoryInfo{Name: model.CategoryCold, Label: "Cold Lead", Color: "#3b82f6", Priority: 3}},
}

var poorCategory = CategoryInfo{Name: model.CategoryPoor, Label: "Poor Lead", Color: "#6b7280", Priority: 4}

// Categorize maps a total score to its tier.
func Categorize(score int) CategoryInfo {
	for _, b := range categoryBands {
		if score >= b.min {
			return b.info
		}
	}
	return poorCategory
}

// LookupCategory returns the tier info for a category name.
func LookupCategory(c model.Category) (CategoryInfo, bool) {
	for _, b := range categoryBands {
		if b.info.Name == c {
			return b.info, true
		}
	}
	if c == model.CategoryPoor {
		return poorCategory, true
	}
	return CategoryInfo{}, false
}

// Apply writes a pool score onto lead and derives its tier. It is the only
// place the score fields of a lead are set.
func Apply(lead *model.Lead, r Result, now time.Time) {
	cat := Categorize(r.Total)
	lead.TotalScore = r.Total
	lead.ScoreFactors = r.Factors
	lead.ScoreCategory = cat.Name
	lead.ScoreLabel = cat.Label
	lead.ScorePriority = cat.Priority
	ts := now.UTC()
	lead.ScoringUpdatedAt = &ts
}

// ApplyEnrichment writes an enrichment score onto lead.
func ApplyEnrichment(lead *model.Lead, r EnrichmentResult) {
	lead.EnrichmentScore = r.Total
	lead.EnrichmentBreakdown = r.Breakdown
}
