package scorer

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-engine/internal/model"
)

var testNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func daysAgo(d float64) *model.Timestamp {
	return model.NewTimestamp(testNow.Add(-time.Duration(d * 24 * float64(time.Hour))))
}

func newTestScorer() *LeadScorer {
	return NewLeadScorer(DefaultVocabulary())
}

func TestScore_HotelScenario(t *testing.T) {
	s := newTestScorer()
	lead := &model.Lead{
		Name:         "Hotel Adina Berlin Mitte",
		BusinessType: model.Ptr("hotel"),
		Location:     model.Ptr("Berlin Mitte"),
		Source:       "manual_verified",
		CreatedAt:    daysAgo(0.1),
	}

	got := s.Score(lead, testNow)

	assert.Equal(t, model.ScoreFactors{
		Completeness:  35,
		Verification:  0,
		BusinessValue: 100,
		Location:      100,
		Source:        90,
		Freshness:     100,
	}, got.Factors)
	// 35*.25 + 0*.20 + 100*.25 + 100*.10 + 90*.10 + 100*.10 = 62.75
	assert.Equal(t, 63, got.Total)
	assert.Equal(t, model.CategoryWarm, Categorize(got.Total).Name)
}

func TestScore_HotelScenarioFullyVerified(t *testing.T) {
	s := newTestScorer()
	lead := &model.Lead{
		Name:         "Hotel Adina Berlin Mitte",
		Email:        model.Ptr("info@adina.de"),
		Phone:        model.Ptr("+493012345678"),
		Website:      model.Ptr("https://adina.eu"),
		BusinessType: model.Ptr("hotel"),
		Location:     model.Ptr("Berlin Mitte"),
		Source:       "manual_verified",
		Verified:     true,
		CreatedAt:    daysAgo(0),
	}

	got := s.Score(lead, testNow)

	assert.Equal(t, 100, got.Factors.Completeness)
	assert.Equal(t, 80, got.Factors.Verification)
	// 25 + 16 + 25 + 10 + 9 + 10
	assert.Equal(t, 95, got.Total)
	assert.Equal(t, model.CategoryHot, Categorize(got.Total).Name)
}

func TestScore_StaleBareRecordIsPoor(t *testing.T) {
	s := newTestScorer()
	lead := &model.Lead{Name: "Nameless Trading", Source: "unknown", CreatedAt: daysAgo(200)}

	got := s.Score(lead, testNow)

	assert.Equal(t, model.ScoreFactors{
		Completeness:  20,
		Verification:  0,
		BusinessValue: 40,
		Location:      50,
		Source:        50,
		Freshness:     10,
	}, got.Factors)
	assert.Equal(t, 26, got.Total)
	assert.Equal(t, model.CategoryPoor, Categorize(got.Total).Name)
}

func TestScore_RangeInvariant(t *testing.T) {
	s := newTestScorer()
	rng := rand.New(rand.NewPCG(7, 11))

	maybe := func(v string) *string {
		if rng.IntN(2) == 0 {
			return nil
		}
		return model.Ptr(v)
	}
	types := []string{"hotel", "service", "bakery", ""}
	sources := []string{"manual", "google_maps", "crawl4ai", "working_lead_scraper", "x"}

	for i := 0; i < 500; i++ {
		lead := &model.Lead{
			Name:            "Hilton Cafe",
			Email:           maybe("a@b.de"),
			Phone:           maybe("+4930123456"),
			Website:         maybe("https://b.de"),
			Location:        maybe("München Mitte"),
			BusinessType:    maybe(types[rng.IntN(len(types))]),
			Source:          sources[rng.IntN(len(sources))],
			Verified:        rng.IntN(2) == 0,
			AutoIntegrated:  rng.IntN(2) == 0,
			AIScore:         model.Ptr(rng.Float64() * 1000),
			QualityScore:    model.Ptr(rng.Float64()*300 - 100),
			RevenueEstimate: model.Ptr(rng.Float64() * 5_000_000),
			CreatedAt:       daysAgo(rng.Float64()*400 - 10),
		}

		got := s.Score(lead, testNow)
		require.GreaterOrEqual(t, got.Total, 0)
		require.LessOrEqual(t, got.Total, 100)
		for name, v := range got.Factors.Map() {
			require.GreaterOrEqual(t, v, 0, name)
			require.LessOrEqual(t, v, 100, name)
		}
	}
}

func TestScore_IdempotentSameDay(t *testing.T) {
	s := newTestScorer()
	lead := &model.Lead{
		Name:         "Cafe Kreuzberg",
		Email:        model.Ptr("hi@cafe.de"),
		BusinessType: model.Ptr("restaurant"),
		Location:     model.Ptr("Berlin Kreuzberg"),
		Source:       "google_maps",
		CreatedAt:    daysAgo(3),
	}

	first := s.Score(lead, testNow)
	second := s.Score(lead, testNow)
	later := s.Score(lead, testNow.Add(2*time.Hour))

	assert.Equal(t, first, second)
	assert.Equal(t, first, later, "same freshness bucket yields identical result")
}

func TestScore_Verification(t *testing.T) {
	tests := []struct {
		name     string
		verified bool
		ai       *float64
		quality  *float64
		want     int
	}{
		{"nothing", false, nil, nil, 0},
		{"verified", true, nil, nil, 80},
		{"ai below cap", false, model.Ptr(150.0), nil, 15},
		{"ai capped", false, model.Ptr(900.0), nil, 20},
		{"negative ai ignored", false, model.Ptr(-50.0), nil, 0},
		{"quality raises", true, model.Ptr(50.0), model.Ptr(95.0), 95},
		{"quality lower ignored", true, model.Ptr(100.0), model.Ptr(60.0), 90},
		{"clamped", true, model.Ptr(500.0), model.Ptr(140.0), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &model.Lead{Name: "x", Verified: tt.verified, AIScore: tt.ai, QualityScore: tt.quality}
			assert.Equal(t, tt.want, round(scoreVerification(lead)))
		})
	}
}

func TestScore_BusinessValue(t *testing.T) {
	s := newTestScorer()
	tests := []struct {
		name string
		lead model.Lead
		want int
	}{
		{"base", model.Lead{Name: "Bakery"}, 40},
		{"high value type", model.Lead{Name: "x", BusinessType: model.Ptr("Boutique Hotel")}, 80},
		{"medium value type", model.Lead{Name: "x", BusinessType: model.Ptr("cleaning service")}, 60},
		{"small revenue", model.Lead{Name: "x", RevenueEstimate: model.Ptr(50_000.0)}, 45},
		{"100k exactly is the lowest tier", model.Lead{Name: "x", RevenueEstimate: model.Ptr(100_000.0)}, 45},
		{"over 100k", model.Lead{Name: "x", RevenueEstimate: model.Ptr(200_000.0)}, 50},
		{"over 500k", model.Lead{Name: "x", RevenueEstimate: model.Ptr(600_000.0)}, 55},
		{"over 1M", model.Lead{Name: "x", RevenueEstimate: model.Ptr(2_000_000.0)}, 60},
		{"premium brand", model.Lead{Name: "BMW Niederlassung"}, 60},
		{"everything clamps", model.Lead{
			Name:            "Porsche Zentrum",
			BusinessType:    model.Ptr("automotive"),
			RevenueEstimate: model.Ptr(3_000_000.0),
		}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, round(s.scoreBusinessValue(&tt.lead)))
		})
	}
}

func TestScore_Location(t *testing.T) {
	s := newTestScorer()
	tests := []struct {
		location string
		want     int
	}{
		{"", 50},
		{"Hamburg", 90},
		{"MÜNCHEN Schwabing", 90},
		{"Dresden", 70},
		{"Berlin Prenzlauer Berg", 100},
		{"Bonn Mitte", 80},
		{"Paris", 50},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			lead := &model.Lead{Name: "x"}
			if tt.location != "" {
				lead.Location = model.Ptr(tt.location)
			}
			assert.Equal(t, tt.want, round(s.scoreLocation(lead)))
		})
	}
}

func TestScore_Source(t *testing.T) {
	s := newTestScorer()
	tests := []struct {
		source string
		auto   bool
		want   int
	}{
		{"working_lead_scraper", false, 80},
		{"crawl4ai", true, 85},
		{"playwright_maps", false, 70},
		{"google_maps", false, 65},
		{"Manual Entry", false, 90},
		{"verified_partner", false, 90},
		{"google_maps_verified", false, 65},
		{"scraper_results", true, 60},
		{"", false, 50},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			lead := &model.Lead{Name: "x", Source: tt.source, AutoIntegrated: tt.auto}
			assert.Equal(t, tt.want, round(s.scoreSource(lead)))
		})
	}
}

func TestScore_Freshness(t *testing.T) {
	tests := []struct {
		name    string
		created *model.Timestamp
		want    int
	}{
		{"missing", nil, 50},
		{"unparseable", model.TimestampFrom("sometime in spring"), 50},
		{"future", daysAgo(-3), 100},
		{"today", daysAgo(0), 100},
		{"one day", daysAgo(1), 100},
		{"two days", daysAgo(2), 90},
		{"seven days", daysAgo(7.5), 90},
		{"eight days", daysAgo(8), 70},
		{"thirty days", daysAgo(30), 70},
		{"thirty one days", daysAgo(31), 50},
		{"ninety days", daysAgo(90), 50},
		{"ninety one days", daysAgo(91), 30},
		{"half a year", daysAgo(180), 30},
		{"stale", daysAgo(181), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &model.Lead{Name: "x", CreatedAt: tt.created}
			assert.Equal(t, tt.want, round(scoreFreshness(lead, testNow)))
		})
	}
}

func TestScore_CustomVocabulary(t *testing.T) {
	v := DefaultVocabulary()
	v.PremiumCities = []string{"Wien"}
	v.GoodCities = nil
	v.PremiumDistricts = nil
	s := NewLeadScorer(v)

	// Mutating the caller's copy must not leak into the scorer.
	v.PremiumCities[0] = "graz"

	lead := &model.Lead{Name: "x", Location: model.Ptr("Wien Innere Stadt")}
	assert.Equal(t, 90, round(s.scoreLocation(lead)))

	berlin := &model.Lead{Name: "x", Location: model.Ptr("Berlin Mitte")}
	assert.Equal(t, 50, round(s.scoreLocation(berlin)))
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score    int
		want     model.Category
		label    string
		priority int
	}{
		{100, model.CategoryHot, "Hot Lead", 1},
		{80, model.CategoryHot, "Hot Lead", 1},
		{79, model.CategoryWarm, "Warm Lead", 2},
		{60, model.CategoryWarm, "Warm Lead", 2},
		{59, model.CategoryCold, "Cold Lead", 3},
		{40, model.CategoryCold, "Cold Lead", 3},
		{39, model.CategoryPoor, "Poor Lead", 4},
		{0, model.CategoryPoor, "Poor Lead", 4},
	}

	for _, tt := range tests {
		got := Categorize(tt.score)
		assert.Equal(t, tt.want, got.Name, "score %d", tt.score)
		assert.Equal(t, tt.label, got.Label, "score %d", tt.score)
		assert.Equal(t, tt.priority, got.Priority, "score %d", tt.score)
	}
}

func TestCategorize_Monotonic(t *testing.T) {
	prev := Categorize(0).Priority
	for score := 1; score <= 100; score++ {
		p := Categorize(score).Priority
		assert.LessOrEqual(t, p, prev, "priority rose at score %d", score)
		prev = p
	}
}

func TestLookupCategory(t *testing.T) {
	for _, c := range model.Categories {
		info, ok := LookupCategory(c)
		require.True(t, ok, c)
		assert.Equal(t, c, info.Name)
	}
	_, ok := LookupCategory("lukewarm")
	assert.False(t, ok)
}

func TestApply(t *testing.T) {
	lead := &model.Lead{Name: "x"}
	Apply(lead, Result{Total: 81, Factors: model.ScoreFactors{Completeness: 90}}, testNow)

	assert.Equal(t, 81, lead.TotalScore)
	assert.Equal(t, 90, lead.ScoreFactors.Completeness)
	assert.Equal(t, model.CategoryHot, lead.ScoreCategory)
	assert.Equal(t, "Hot Lead", lead.ScoreLabel)
	assert.Equal(t, 1, lead.ScorePriority)
	require.NotNil(t, lead.ScoringUpdatedAt)
	assert.True(t, testNow.Equal(*lead.ScoringUpdatedAt))
}
