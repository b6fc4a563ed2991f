// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Sources     SourcesConfig     `yaml:"sources" mapstructure:"sources"`
	Corrections CorrectionsConfig `yaml:"corrections" mapstructure:"corrections"`
	Resolve     ResolveConfig     `yaml:"resolve" mapstructure:"resolve"`
}

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FetchConfig configures raw-data downloads.
type FetchConfig struct {
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	TempDir        string  `yaml:"temp_dir" mapstructure:"temp_dir"`
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// SourcesConfig holds the upstream URLs for each raw dataset.
type SourcesConfig struct {
	ScrapeBaseURL   string `yaml:"scrape_base_url" mapstructure:"scrape_base_url"`
	FilingsZipURL   string `yaml:"filings_zip_url" mapstructure:"filings_zip_url"`
	FilerToFilerURL string `yaml:"filer_to_filer_url" mapstructure:"filer_to_filer_url"`
}

// CorrectionsConfig configures the manual correction tables.
type CorrectionsConfig struct {
	// Path points at a YAML file overriding the embedded tables; empty
	// means use the embedded defaults.
	Path string `yaml:"path" mapstructure:"path"`
}

// ResolveConfig configures the resolution passes.
type ResolveConfig struct {
	// SuggestThreshold is the minimum JaroWinkler similarity for the
	// suggest command to report a probable person match.
	SuggestThreshold float64 `yaml:"suggest_threshold" mapstructure:"suggest_threshold"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CALACCESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "calaccess.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fetch.user_agent", "calaccess-processed (california-civic-data)")
	v.SetDefault("fetch.temp_dir", "/tmp/calaccess")
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.timeout_secs", 120)
	v.SetDefault("fetch.requests_per_sec", 2.0)
	v.SetDefault("sources.scrape_base_url", "https://cal-access.sos.ca.gov/Campaign")
	v.SetDefault("sources.filings_zip_url", "https://campaignfinance.cdn.sos.ca.gov/dbwebexport.zip")
	v.SetDefault("sources.filer_to_filer_url", "https://campaignfinance.cdn.sos.ca.gov/filer_to_filer.tsv")
	v.SetDefault("resolve.suggest_threshold", 0.9)

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
