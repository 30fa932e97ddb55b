package model

import (
	"slices"
	"time"
)

// Category is the actionable tier a lead falls into, derived from its total score.
type Category string

const (
	CategoryHot  Category = "hot"
	CategoryWarm Category = "warm"
	CategoryCold Category = "cold"
	CategoryPoor Category = "poor"
)

// Categories lists every tier from highest to lowest priority.
var Categories = []Category{CategoryHot, CategoryWarm, CategoryCold, CategoryPoor}

// ScoreFactors holds the six rounded sub-scores (0-100) behind a total score.
type ScoreFactors struct {
	Completeness  int `json:"completeness"`
	Verification  int `json:"verification"`
	BusinessValue int `json:"business_value"`
	Location      int `json:"location"`
	Source        int `json:"source"`
	Freshness     int `json:"freshness"`
}

// Map returns the factors keyed by their snake_case names.
func (f ScoreFactors) Map() map[string]int {
	return map[string]int{
		"completeness":   f.Completeness,
		"verification":   f.Verification,
		"business_value": f.BusinessValue,
		"location":       f.Location,
		"source":         f.Source,
		"freshness":      f.Freshness,
	}
}

// Lead is the canonical business-contact record.
//
// Optional fields are pointers: nil means the value was absent or failed
// normalization. Score fields are derived and must only be written by the
// scorer package.
type Lead struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
	Platform  string `json:"platform,omitempty"`

	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Website *string `json:"website"`
	Address *string `json:"address"`

	SocialHandles map[string]string `json:"social_handles,omitempty"`

	BusinessType    *string  `json:"business_type"`
	Industry        *string  `json:"industry"`
	RevenueEstimate *float64 `json:"revenue_estimate,omitempty"`
	Location        *string  `json:"location"`

	Verified       bool     `json:"verified,omitempty"`
	AIScore        *float64 `json:"ai_score,omitempty"`
	QualityScore   *float64 `json:"quality_score,omitempty"`
	AutoIntegrated bool     `json:"auto_integrated,omitempty"`

	PainPoints     []string `json:"pain_points,omitempty"`
	Followers      *int     `json:"followers,omitempty"`
	EngagementRate *float64 `json:"engagement_rate,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Tags           []string `json:"tags,omitempty"`

	TotalScore          int            `json:"total_score"`
	ScoreFactors        ScoreFactors   `json:"score_factors"`
	ScoreCategory       Category       `json:"score_category"`
	ScoreLabel          string         `json:"score_label,omitempty"`
	ScorePriority       int            `json:"score_priority"`
	DataQualityScore    int            `json:"data_quality_score"`
	EnrichmentScore     int            `json:"enrichment_score"`
	EnrichmentBreakdown map[string]int `json:"enrichment_breakdown,omitempty"`

	CreatedAt        *Timestamp `json:"created_at,omitempty"`
	ScoringUpdatedAt *time.Time `json:"scoring_updated_at,omitempty"`
}

// AddSocialHandle records a handle for a platform. Empty values are ignored.
func (l *Lead) AddSocialHandle(platform, handle string) bool {
	if platform == "" || handle == "" {
		return false
	}
	if l.SocialHandles == nil {
		l.SocialHandles = make(map[string]string)
	}
	l.SocialHandles[platform] = handle
	return true
}

// AddPainPoint adds a pain-point tag if it is not already present.
func (l *Lead) AddPainPoint(tag string) bool {
	if tag == "" || slices.Contains(l.PainPoints, tag) {
		return false
	}
	l.PainPoints = append(l.PainPoints, tag)
	return true
}

// HasContact reports whether any of email, phone or website is set.
func (l *Lead) HasContact() bool {
	return l.Email != nil || l.Phone != nil || l.Website != nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the value behind p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
