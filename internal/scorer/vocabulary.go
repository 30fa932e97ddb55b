// Package scorer computes lead scores. LeadScorer rates pooled records on six
// weighted factors; EnrichmentScorer rates collected records on their contact
// and social signals. The two are separate algorithms and are never mixed.
package scorer

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Weights are the factor weights of the pool score. They sum to 1.
type Weights struct {
	Completeness  float64 `yaml:"completeness" json:"completeness"`
	Verification  float64 `yaml:"verification" json:"verification"`
	BusinessValue float64 `yaml:"business_value" json:"business_value"`
	Location      float64 `yaml:"location" json:"location"`
	Source        float64 `yaml:"source" json:"source"`
	Freshness     float64 `yaml:"freshness" json:"freshness"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Completeness + w.Verification + w.BusinessValue +
		w.Location + w.Source + w.Freshness
}

// SourceTier awards Bonus to records whose source contains Match.
type SourceTier struct {
	Match string `yaml:"match" json:"match"`
	Bonus int    `yaml:"bonus" json:"bonus"`
}

// Vocabulary is the configuration the pool scorer matches records against.
// Matching is by lower-case substring.
type Vocabulary struct {
	HighValueTypes   []string     `yaml:"high_value_types" json:"high_value_types"`
	MediumValueTypes []string     `yaml:"medium_value_types" json:"medium_value_types"`
	PremiumBrands    []string     `yaml:"premium_brands" json:"premium_brands"`
	PremiumCities    []string     `yaml:"premium_cities" json:"premium_cities"`
	GoodCities       []string     `yaml:"good_cities" json:"good_cities"`
	PremiumDistricts []string     `yaml:"premium_districts" json:"premium_districts"`
	SourceTiers      []SourceTier `yaml:"source_tiers" json:"source_tiers"`
	Weights          Weights      `yaml:"weights" json:"weights"`
}

// DefaultVocabulary returns the built-in vocabulary and weights.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		HighValueTypes: []string{
			"restaurant", "hotel", "retail", "technology", "software",
			"consulting", "finance", "healthcare", "real estate", "automotive",
		},
		MediumValueTypes: []string{
			"service", "education", "manufacturing", "construction", "transport",
		},
		PremiumBrands: []string{
			"hyatt", "hilton", "marriott", "sofitel", "adina", "mercedes",
			"bmw", "audi", "porsche", "michelin", "gault", "millau",
		},
		PremiumCities: []string{
			"berlin", "münchen", "hamburg", "köln", "frankfurt",
			"düsseldorf", "stuttgart", "dortmund", "essen", "leipzig",
		},
		GoodCities: []string{
			"hannover", "dresden", "nürnberg", "duisburg", "bochum",
			"wuppertal", "bielefeld", "bonn", "münster", "karlsruhe",
		},
		PremiumDistricts: []string{
			"mitte", "charlottenburg", "wilmersdorf", "schöneberg",
			"prenzlauer berg", "friedrichshain", "kreuzberg",
		},
		// Checked in order; the first match wins.
		SourceTiers: []SourceTier{
			{Match: "working_lead_scraper", Bonus: 30},
			{Match: "crawl4ai", Bonus: 25},
			{Match: "playwright", Bonus: 20},
			{Match: "google_maps", Bonus: 15},
			{Match: "manual", Bonus: 40},
			{Match: "verified", Bonus: 40},
		},
		Weights: Weights{
			Completeness:  0.25,
			Verification:  0.20,
			BusinessValue: 0.25,
			Location:      0.10,
			Source:        0.10,
			Freshness:     0.10,
		},
	}
}

// Clone returns a deep copy of v.
func (v Vocabulary) Clone() Vocabulary {
	out := v
	out.HighValueTypes = foldAll(v.HighValueTypes)
	out.MediumValueTypes = foldAll(v.MediumValueTypes)
	out.PremiumBrands = foldAll(v.PremiumBrands)
	out.PremiumCities = foldAll(v.PremiumCities)
	out.GoodCities = foldAll(v.GoodCities)
	out.PremiumDistricts = foldAll(v.PremiumDistricts)
	out.SourceTiers = slices.Clone(v.SourceTiers)
	for i := range out.SourceTiers {
		out.SourceTiers[i].Match = fold(out.SourceTiers[i].Match)
	}
	return out
}

// LoadVocabulary reads a YAML file and overlays it on DefaultVocabulary.
// Lists present in the file replace the defaults; absent ones are kept.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	data, err := os.ReadFile(path)
	if err != nil {
		return v, eris.Wrapf(err, "scorer: read vocabulary %s", path)
	}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return v, eris.Wrapf(err, "scorer: parse vocabulary %s", path)
	}
	if err := ValidateWeights(v.Weights); err != nil {
		return v, err
	}
	return v, nil
}

// ValidateWeights checks that all weights are non-negative and sum to 1.
func ValidateWeights(w Weights) error {
	var errs []string

	weights := []struct {
		name string
		w    float64
	}{
		{"completeness", w.Completeness},
		{"verification", w.Verification},
		{"business_value", w.BusinessValue},
		{"location", w.Location},
		{"source", w.Source},
		{"freshness", w.Freshness},
	}
	for _, e := range weights {
		if e.w < 0 {
			errs = append(errs, fmt.Sprintf("%s weight must be >= 0", e.name))
		}
	}

	// Allow tolerance for floating-point.
	if sum := w.Sum(); math.Abs(sum-1) > 0.01 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1, got %.3f", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: weight validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = fold(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// containsAny reports whether text contains any of the terms.
func containsAny(text string, terms []string) bool {
	if text == "" {
		return false
	}
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
