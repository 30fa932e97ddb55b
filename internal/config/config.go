package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Quality    QualityConfig    `yaml:"quality" mapstructure:"quality"`
	Classify   ClassifyConfig   `yaml:"classify" mapstructure:"classify"`
	Collector  CollectorConfig  `yaml:"collector" mapstructure:"collector"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the pool backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ScoringConfig configures the scoring engine.
type ScoringConfig struct {
	VocabularyPath string `yaml:"vocabulary_path" mapstructure:"vocabulary_path"`
	DefaultRegion  string `yaml:"default_region" mapstructure:"default_region"`
	Strategy       string `yaml:"strategy" mapstructure:"strategy"`
}

// QualityConfig configures the admission gate.
type QualityConfig struct {
	AdmissionThreshold int `yaml:"admission_threshold" mapstructure:"admission_threshold"`
}

// ClassifyConfig configures the business classifier.
type ClassifyConfig struct {
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
}

// CollectorConfig configures where collector output is read from.
type CollectorConfig struct {
	ResultsDir string `yaml:"results_dir" mapstructure:"results_dir"`
}

// ExportConfig configures exporters.
type ExportConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	MinScore    int    `yaml:"min_score" mapstructure:"min_score"`
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token     string  `yaml:"token" mapstructure:"token"`
	LeadDB    string  `yaml:"lead_db" mapstructure:"lead_db"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID   string  `yaml:"client_id" mapstructure:"client_id"`
	Username   string  `yaml:"username" mapstructure:"username"`
	KeyPath    string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL   string  `yaml:"login_url" mapstructure:"login_url"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	ScoreField string  `yaml:"score_field" mapstructure:"score_field"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "json")
	v.SetDefault("store.path", "data/leads.json")
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("scoring.vocabulary_path", "")
	v.SetDefault("scoring.default_region", "DE")
	v.SetDefault("scoring.strategy", "all")
	v.SetDefault("quality.admission_threshold", 20)
	v.SetDefault("classify.rules_path", "")
	v.SetDefault("collector.results_dir", "scraper_results")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.min_score", 0)
	v.SetDefault("export.max_attempts", 3)
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.lead_db", "")
	v.SetDefault("notion.rate_limit", 3)
	v.SetDefault("salesforce.client_id", "")
	v.SetDefault("salesforce.username", "")
	v.SetDefault("salesforce.key_path", "")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.rate_limit", 5)
	v.SetDefault("salesforce.score_field", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

var validStrategies = map[string]bool{"pool": true, "enrichment": true, "all": true}

// Validate checks the settings a command needs. Every problem is reported,
// not just the first.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "ingest", "integrate", "rescore", "report", "export":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateScoring()...)
	case "serve":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateScoring()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	case "notion":
		if c.Notion.Token == "" {
			errs = append(errs, "notion.token is required")
		}
		if c.Notion.LeadDB == "" {
			errs = append(errs, "notion.lead_db is required")
		}
	case "salesforce":
		if c.Salesforce.ClientID == "" {
			errs = append(errs, "salesforce.client_id is required")
		}
		if c.Salesforce.Username == "" {
			errs = append(errs, "salesforce.username is required")
		}
		if c.Salesforce.KeyPath == "" {
			errs = append(errs, "salesforce.key_path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "json", "sqlite":
		if c.Store.Path == "" {
			errs = append(errs, fmt.Sprintf("store.path is required for the %s driver", c.Store.Driver))
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for the postgres driver")
		}
		if c.Store.MaxConns < 0 || c.Store.MinConns < 0 || (c.Store.MaxConns > 0 && c.Store.MinConns > c.Store.MaxConns) {
			errs = append(errs, "store.min_conns must be between 0 and store.max_conns")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be one of json, sqlite, postgres", c.Store.Driver))
	}
	return errs
}

func (c *Config) validateScoring() []string {
	var errs []string
	if !validStrategies[c.Scoring.Strategy] {
		errs = append(errs, fmt.Sprintf("scoring.strategy %q must be one of pool, enrichment, all", c.Scoring.Strategy))
	}
	if c.Quality.AdmissionThreshold < 1 || c.Quality.AdmissionThreshold > 100 {
		errs = append(errs, "quality.admission_threshold must be between 1 and 100")
	}
	if c.Export.MinScore < 0 || c.Export.MinScore > 100 {
		errs = append(errs, "export.min_score must be between 0 and 100")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
