package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Catalog struct {
		File      string `yaml:"file"`       // one ticker per line; empty -> built-in list
		SourceURL string `yaml:"source_url"` // optional index CSV to refresh the catalog from
	} `yaml:"catalog"`
	DataSource struct {
		Provider string `yaml:"provider"` // yahoo | stooq | mock
		BaseURL  string `yaml:"base_url"`
	} `yaml:"data_source"`
	Refresh struct {
		Workers        int    `yaml:"workers"`
		Retries        int    `yaml:"retries"`
		LookbackDays   int    `yaml:"lookback_days"`
		MinRows        int    `yaml:"min_rows"`
		OverlapDays    int    `yaml:"overlap_days"`
		CheckpointFile string `yaml:"checkpoint_file"`
		FailedFile     string `yaml:"failed_file"`
		MaxAgeHours    int    `yaml:"max_age_hours"` // full rebuild at most this often
	} `yaml:"refresh"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Screener struct {
		MinPrice     float64 `yaml:"min_price"`
		MinAvgVolume float64 `yaml:"min_avg_volume"`
		ATRPctMin    float64 `yaml:"atr_pct_min"`
		ATRPctMax    float64 `yaml:"atr_pct_max"`
	} `yaml:"screener"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CATALOG_FILE"); v != "" {
		cfg.Catalog.File = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("REFRESH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Refresh.Workers = n
		}
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}

	// Defaults
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stocks.db"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.Refresh.Workers == 0 {
		cfg.Refresh.Workers = 12
	}
	if cfg.Refresh.Retries == 0 {
		cfg.Refresh.Retries = 3
	}
	if cfg.Refresh.LookbackDays == 0 {
		cfg.Refresh.LookbackDays = 365
	}
	if cfg.Refresh.MinRows == 0 {
		cfg.Refresh.MinRows = 200
	}
	if cfg.Refresh.OverlapDays == 0 {
		cfg.Refresh.OverlapDays = 3
	}
	if cfg.Refresh.CheckpointFile == "" {
		cfg.Refresh.CheckpointFile = "data/last_refresh.txt"
	}
	if cfg.Refresh.FailedFile == "" {
		cfg.Refresh.FailedFile = "data/failed_tickers.txt"
	}
	if cfg.Refresh.MaxAgeHours == 0 {
		cfg.Refresh.MaxAgeHours = 24
	}
	if cfg.Schedule.DailyCron == "" {
		// Weekday evenings after the US close, server local time.
		cfg.Schedule.DailyCron = "0 30 17 * * 1-5"
	}
	if cfg.Screener.MinPrice == 0 {
		cfg.Screener.MinPrice = 3.0
	}
	if cfg.Screener.MinAvgVolume == 0 {
		cfg.Screener.MinAvgVolume = 100_000
	}
	if cfg.Screener.ATRPctMin == 0 {
		cfg.Screener.ATRPctMin = 0.2
	}
	if cfg.Screener.ATRPctMax == 0 {
		cfg.Screener.ATRPctMax = 8.0
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	switch c.DataSource.Provider {
	case "yahoo", "stooq", "mock":
	default:
		return fmt.Errorf("data_source.provider must be yahoo, stooq, or mock (got %q)", c.DataSource.Provider)
	}
	if c.Refresh.Workers <= 0 {
		return fmt.Errorf("refresh.workers must be positive")
	}
	if c.Refresh.LookbackDays <= 0 {
		return fmt.Errorf("refresh.lookback_days must be positive")
	}
	if c.Screener.ATRPctMin >= c.Screener.ATRPctMax {
		return fmt.Errorf("screener.atr_pct_min must be below atr_pct_max")
	}
	return nil
}
