package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Store.Driver)
	assert.Equal(t, "data/leads.json", cfg.Store.Path)
	assert.Equal(t, int32(4), cfg.Store.MaxConns)
	assert.Equal(t, "DE", cfg.Scoring.DefaultRegion)
	assert.Equal(t, "all", cfg.Scoring.Strategy)
	assert.Equal(t, 20, cfg.Quality.AdmissionThreshold)
	assert.Equal(t, "scraper_results", cfg.Collector.ResultsDir)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, 3, cfg.Export.MaxAttempts)
	assert.InDelta(t, 3.0, cfg.Notion.RateLimit, 0.001)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.LoginURL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  path: pool.db
scoring:
  strategy: pool
  default_region: AT
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "pool.db", cfg.Store.Path)
	assert.Equal(t, "pool", cfg.Scoring.Strategy)
	assert.Equal(t, "AT", cfg.Scoring.DefaultRegion)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 20, cfg.Quality.AdmissionThreshold)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADS_STORE_DRIVER", "postgres")
	t.Setenv("LEADS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LEADS_SERVER_PORT", "3000")
	t.Setenv("LEADS_NOTION_TOKEN", "ntn_secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "ntn_secret", cfg.Notion.Token)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "json"
	cfg.Store.Path = "data/leads.json"
	cfg.Scoring.Strategy = "all"
	cfg.Quality.AdmissionThreshold = 20
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate_PoolCommands(t *testing.T) {
	for _, mode := range []string{"ingest", "integrate", "rescore", "report", "export", "serve"} {
		t.Run(mode, func(t *testing.T) {
			assert.NoError(t, validDefaults().Validate(mode))
		})
	}
}

func TestValidate_Store(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"json without path", func(c *Config) { c.Store.Path = "" }, "store.path is required for the json driver"},
		{"postgres without url", func(c *Config) { c.Store.Driver = "postgres" }, "store.database_url is required"},
		{"postgres ok", func(c *Config) {
			c.Store.Driver = "postgres"
			c.Store.DatabaseURL = "postgres://localhost/leads"
		}, ""},
		{"postgres conns inverted", func(c *Config) {
			c.Store.Driver = "postgres"
			c.Store.DatabaseURL = "postgres://localhost/leads"
			c.Store.MaxConns, c.Store.MinConns = 2, 5
		}, "store.min_conns"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, `store.driver "mongo" must be one of`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate("ingest")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_Scoring(t *testing.T) {
	cfg := validDefaults()
	cfg.Scoring.Strategy = "fancy"
	cfg.Quality.AdmissionThreshold = 101
	cfg.Export.MinScore = -1

	err := cfg.Validate("rescore")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scoring.strategy "fancy"`)
	assert.Contains(t, err.Error(), "quality.admission_threshold must be between 1 and 100")
	assert.Contains(t, err.Error(), "export.min_score must be between 0 and 100")
}

func TestValidate_ZeroAdmissionThreshold(t *testing.T) {
	cfg := validDefaults()
	cfg.Quality.AdmissionThreshold = 0

	err := cfg.Validate("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quality.admission_threshold must be between 1 and 100")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateNotion(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("notion")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token is required")
	assert.Contains(t, err.Error(), "notion.lead_db is required")

	cfg.Notion.Token = "ntn_token"
	cfg.Notion.LeadDB = "lead-db-id"
	assert.NoError(t, cfg.Validate("notion"))
}

func TestValidateSalesforce(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("salesforce")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salesforce.client_id is required")
	assert.Contains(t, err.Error(), "salesforce.username is required")
	assert.Contains(t, err.Error(), "salesforce.key_path is required")

	cfg.Salesforce.ClientID = "3MVG"
	cfg.Salesforce.Username = "ops@example.com"
	cfg.Salesforce.KeyPath = "/etc/sf/key.pem"
	assert.NoError(t, cfg.Validate("salesforce"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
