package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Exchange ExchangeConfig `yaml:"exchange"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Report   ReportConfig   `yaml:"report"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ExchangeConfig holds the spot exchange connection settings.
type ExchangeConfig struct {
	BaseURL             string `yaml:"base_url"`
	MaxConcurrentProbes int    `yaml:"max_concurrent_probes"`
}

// AnalysisConfig holds arbitrage-analysis settings.
type AnalysisConfig struct {
	Candidates      []string `yaml:"candidates"`
	TradedVolumeUSD string   `yaml:"traded_volume_usd"`
	Interval        string   `yaml:"interval"` // empty = run once
}

// ReportConfig holds reporting-sink settings.
type ReportConfig struct {
	SQLiteEnabled bool   `yaml:"sqlite_enabled"`
	SQLitePath    string `yaml:"sqlite_path"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	cfg.setDefaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if len(data) > 0 {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// setDefaults sets default values for all configuration options.
func (c *Config) setDefaults() {
	c.Exchange = ExchangeConfig{
		BaseURL:             "https://api.exchange.example",
		MaxConcurrentProbes: 8,
	}
	c.Analysis = AnalysisConfig{
		Candidates:      []string{"USD", "EUR", "BTC", "ETH"},
		TradedVolumeUSD: "0",
		Interval:        "",
	}
	c.Report = ReportConfig{
		SQLiteEnabled: false,
		SQLitePath:    "./data/arbfinder.db",
	}
	c.Metrics = MetricsConfig{
		Enabled: true,
		Port:    8080,
		Path:    "/metrics",
	}
	c.Logging = LoggingConfig{
		Level:  "info",
		Format: "json",
	}
}

// applyEnvOverrides applies environment variable overrides to configuration.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EXCHANGE_BASE_URL"); v != "" {
		c.Exchange.BaseURL = v
	}
	if v := os.Getenv("EXCHANGE_MAX_CONCURRENT_PROBES"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			c.Exchange.MaxConcurrentProbes = n
		}
	}

	if v := os.Getenv("ANALYSIS_CANDIDATES"); v != "" {
		c.Analysis.Candidates = strings.Split(v, ",")
	}
	if v := os.Getenv("ANALYSIS_TRADED_VOLUME_USD"); v != "" {
		c.Analysis.TradedVolumeUSD = v
	}
	if v := os.Getenv("ANALYSIS_INTERVAL"); v != "" {
		c.Analysis.Interval = v
	}

	if v := os.Getenv("REPORT_SQLITE_PATH"); v != "" {
		c.Report.SQLitePath = v
		c.Report.SQLiteEnabled = true
	}

	if v := os.Getenv("METRICS_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil && port > 0 {
			c.Metrics.Port = port
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}

// validate checks that all required configuration values are present and valid.
func (c *Config) validate() error {
	if c.Exchange.BaseURL == "" {
		return fmt.Errorf("exchange.base_url is required (set EXCHANGE_BASE_URL env var)")
	}
	if c.Exchange.MaxConcurrentProbes <= 0 {
		return fmt.Errorf("exchange.max_concurrent_probes must be positive")
	}
	if len(c.Analysis.Candidates) < 3 {
		return fmt.Errorf("analysis.candidates must list at least 3 currencies")
	}
	if c.Report.SQLiteEnabled && c.Report.SQLitePath == "" {
		return fmt.Errorf("report.sqlite_path is required when report.sqlite_enabled is true")
	}
	if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be a valid port number")
	}
	return nil
}
