package scorer

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Strategy names which scoring algorithm a caller runs.
type Strategy string

const (
	// StrategyPool runs the six-factor LeadScorer.
	StrategyPool Strategy = "pool"
	// StrategyEnrichment runs the EnrichmentScorer.
	StrategyEnrichment Strategy = "enrichment"
	// StrategyAll runs both.
	StrategyAll Strategy = "all"
)

// ParseStrategy parses a strategy name. Empty input selects StrategyAll.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyAll:
		return StrategyAll, nil
	case StrategyPool:
		return StrategyPool, nil
	case StrategyEnrichment:
		return StrategyEnrichment, nil
	}
	return "", eris.Errorf("scorer: unknown strategy %q (want pool, enrichment or all)", s)
}

// Pool reports whether the strategy includes the pool scorer.
func (s Strategy) Pool() bool { return s == StrategyPool || s == StrategyAll }

// Enrichment reports whether the strategy includes the enrichment scorer.
func (s Strategy) Enrichment() bool { return s == StrategyEnrichment || s == StrategyAll }
