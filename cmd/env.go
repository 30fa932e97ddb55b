package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-engine/internal/classify"
	"github.com/sells-group/lead-engine/internal/config"
	"github.com/sells-group/lead-engine/internal/lifecycle"
	"github.com/sells-group/lead-engine/internal/normalize"
	"github.com/sells-group/lead-engine/internal/quality"
	"github.com/sells-group/lead-engine/internal/scorer"
	"github.com/sells-group/lead-engine/internal/store"
	"github.com/sells-group/lead-engine/pkg/notion"
	sfpkg "github.com/sells-group/lead-engine/pkg/salesforce"
)

// engineEnv holds the store and manager shared by the pool commands.
type engineEnv struct {
	Store   store.Store
	Manager *lifecycle.Manager
}

// Close releases the store.
func (e *engineEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch c.Store.Driver {
	case store.DriverJSON:
		st = store.NewJSON(c.Store.Path)
	case store.DriverSQLite:
		st, err = store.NewSQLite(c.Store.Path)
	case store.DriverPostgres:
		st, err = store.NewPostgres(ctx, c.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "init %s store", c.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initEngine builds the store and a lifecycle manager from configuration.
func initEngine(ctx context.Context, c *config.Config) (*engineEnv, error) {
	strategy, err := scorer.ParseStrategy(c.Scoring.Strategy)
	if err != nil {
		return nil, err
	}

	vocab := scorer.DefaultVocabulary()
	if c.Scoring.VocabularyPath != "" {
		if vocab, err = scorer.LoadVocabulary(c.Scoring.VocabularyPath); err != nil {
			return nil, err
		}
	}

	rules := classify.DefaultRules()
	if c.Classify.RulesPath != "" {
		if rules, err = classify.LoadRules(c.Classify.RulesPath); err != nil {
			return nil, err
		}
	}

	st, err := initStore(ctx, c)
	if err != nil {
		return nil, err
	}

	mgr := lifecycle.New(
		st,
		normalize.New(c.Scoring.DefaultRegion),
		classify.New(rules),
		scorer.NewLeadScorer(vocab),
		scorer.NewEnrichmentScorer(),
		quality.NewValidator(c.Quality.AdmissionThreshold),
		lifecycle.WithStrategy(strategy),
	)
	return &engineEnv{Store: st, Manager: mgr}, nil
}

func initSalesforce(c *config.Config) (sfpkg.Client, error) {
	if err := c.Validate("salesforce"); err != nil {
		return nil, err
	}

	pemData, err := os.ReadFile(c.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	client, err := sfpkg.Connect(sfpkg.Creds{
		Domain:      c.Salesforce.LoginURL,
		Username:    c.Salesforce.Username,
		ConsumerKey: c.Salesforce.ClientID,
		PrivateKey:  string(pemData),
	}, sfpkg.WithRateLimit(c.Salesforce.RateLimit))
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}
	return client, nil
}

func initNotion(c *config.Config) (notion.Client, error) {
	if err := c.Validate("notion"); err != nil {
		return nil, err
	}
	return notion.NewClient(c.Notion.Token, notion.WithRateLimit(c.Notion.RateLimit)), nil
}
