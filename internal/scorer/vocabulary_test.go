package scorer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultVocabulary_WeightsValid(t *testing.T) {
	v := DefaultVocabulary()
	require.NoError(t, ValidateWeights(v.Weights))
	assert.InDelta(t, 1.0, v.Weights.Sum(), 1e-9)
	assert.Len(t, v.SourceTiers, 6)
}

func TestValidateWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr string
	}{
		{"default", DefaultVocabulary().Weights, ""},
		{"within tolerance", Weights{0.25, 0.2, 0.25, 0.1, 0.1, 0.105}, ""},
		{"negative", Weights{0.35, -0.1, 0.25, 0.2, 0.2, 0.1}, "verification weight must be >= 0"},
		{"sum too low", Weights{0.1, 0.1, 0.1, 0.1, 0.1, 0.1}, "weights should sum to 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeights(tt.weights)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadVocabulary_Overlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	content := `premium_cities: [wien, graz]
source_tiers:
  - match: partner_feed
    bonus: 35
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"wien", "graz"}, v.PremiumCities)
	assert.Equal(t, []SourceTier{{Match: "partner_feed", Bonus: 35}}, v.SourceTiers)
	assert.Equal(t, DefaultVocabulary().HighValueTypes, v.HighValueTypes, "absent lists keep defaults")
	assert.Equal(t, DefaultVocabulary().Weights, v.Weights)
}

func TestLoadVocabulary_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadVocabulary(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("weights: {completeness: 0.9}\n"), 0o644))
	_, err = LoadVocabulary(bad)
	assert.ErrorContains(t, err, "weights should sum to 1")
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyAll, false},
		{"all", StrategyAll, false},
		{" Pool ", StrategyPool, false},
		{"enrichment", StrategyEnrichment, false},
		{"merged", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	assert.True(t, StrategyAll.Pool())
	assert.True(t, StrategyAll.Enrichment())
	assert.False(t, StrategyPool.Enrichment())
	assert.False(t, StrategyEnrichment.Pool())
}
