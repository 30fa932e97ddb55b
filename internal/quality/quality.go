// Package quality computes the data-quality score used to admit leads into
// the pool.
package quality

import (
	"net/url"
	"strings"

	"github.com/sells-group/lead-engine/internal/model"
	"github.com/sells-group/lead-engine/internal/normalize"
)

// DefaultThreshold is the minimum data-quality score for admission.
const DefaultThreshold = 20

// Score rates a lead's completeness and field validity on a 0-100 scale.
// A missing name does not stop the remaining fields from being scored.
func Score(lead *model.Lead) int {
	var score int
	if strings.TrimSpace(lead.Name) != "" {
		score += 20
	}
	if lead.Email != nil {
		if _, ok := normalize.CleanEmail(*lead.Email); ok {
			score += 25
		}
	}
	if lead.Phone != nil {
		if n := len(normalize.DigitsOnly(*lead.Phone)); n >= 7 && n <= 15 {
			score += 20
		}
	}
	if lead.Website != nil && validURL(*lead.Website) {
		score += 15
	}
	if present(lead.Address) {
		score += 5
	}
	if present(lead.Industry) {
		score += 5
	}
	if len(lead.SocialHandles) > 0 {
		score += 5
	}
	if len(lead.PainPoints) > 0 {
		score += 5
	}
	return min(score, 100)
}

// Validator gates admission on the data-quality score.
type Validator struct {
	Threshold int
}

// NewValidator returns a Validator. A non-positive threshold selects
// DefaultThreshold.
func NewValidator(threshold int) *Validator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Validator{Threshold: threshold}
}

// Admit scores lead, records the score on it and reports whether it reaches
// the threshold.
func (v *Validator) Admit(lead *model.Lead) bool {
	lead.DataQualityScore = Score(lead)
	return lead.DataQualityScore >= v.Threshold
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
