// Package config loads edumetrics settings from TOML, .env and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all edumetrics configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Cost       CostConfig       `toml:"cost"`
	Fetch      FetchConfig      `toml:"fetch"`
	FAQ        FAQConfig        `toml:"faq"`
	Store      StoreConfig      `toml:"store"`
	Platform   PlatformConfig   `toml:"platform"`
	Cache      CacheConfig      `toml:"cache"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Log        LogConfig        `toml:"log"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Budget     BudgetConfig     `toml:"budget"`
	Pricing    PricingOverrides `toml:"pricing"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DefaultDays int    `toml:"default_days"`
	Timezone    string `toml:"timezone,omitempty"`
}

// CostConfig controls message cost estimation.
type CostConfig struct {
	// InputShare is the fraction of a message's tokens billed at the input rate.
	InputShare float64 `toml:"input_share"`
}

// FetchConfig bounds the per-request event fan-out.
type FetchConfig struct {
	MaxConcurrency int `toml:"max_concurrency"`
	PerModuleLimit int `toml:"per_module_limit"`
}

// FAQConfig holds question clustering settings.
type FAQConfig struct {
	Threshold      int `toml:"threshold"`
	MinOccurrences int `toml:"min_occurrences"`
	MaxSamples     int `toml:"max_samples"`
	Limit          int `toml:"limit"`
}

// StoreConfig selects the event store backend.
type StoreConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn,omitempty"`
}

// PlatformConfig points at the host platform's admin API for reference data.
type PlatformConfig struct {
	BaseURL  string `toml:"base_url,omitempty"`
	APIToken string `toml:"api_token,omitempty"`
}

// CacheConfig holds Redis report cache settings.
type CacheConfig struct {
	RedisURL   string `toml:"redis_url,omitempty"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// DaemonConfig holds HTTP API settings.
type DaemonConfig struct {
	Addr            string `toml:"addr"`
	IntervalSeconds int    `toml:"interval_seconds"`
	EventsBuffer    int    `toml:"events_buffer"`
}

// LogConfig controls logrus output.
type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file,omitempty"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// BudgetConfig holds budget tracking settings.
type BudgetConfig struct {
	MonthlyUSD *float64 `toml:"monthly_usd,omitempty"`
}

// PricingOverrides allows user-defined pricing for specific models.
type PricingOverrides struct {
	Overrides map[string]ModelPricingOverride `toml:"overrides,omitempty"`
}

// ModelPricingOverride holds per-model pricing overrides.
type ModelPricingOverride struct {
	Provider      string   `toml:"provider,omitempty"`
	InputPerMTok  *float64 `toml:"input_per_mtok,omitempty"`
	OutputPerMTok *float64 `toml:"output_per_mtok,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultDays: 30,
			Timezone:    "Local",
		},
		Cost: CostConfig{
			InputShare: 0.25,
		},
		Fetch: FetchConfig{
			MaxConcurrency: 8,
			PerModuleLimit: 5000,
		},
		FAQ: FAQConfig{
			Threshold:      75,
			MinOccurrences: 1,
			MaxSamples:     5,
			Limit:          20,
		},
		Store: StoreConfig{
			Driver: "sqlite",
		},
		Cache: CacheConfig{
			TTLSeconds: 60,
		},
		Daemon: DaemonConfig{
			Addr:            "127.0.0.1:8787",
			IntervalSeconds: 30,
			EventsBuffer:    200,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "edumetrics")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "edumetrics")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the local database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "edumetrics")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "edumetrics")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides (optionally from a .env file in the working directory) win.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads config from an explicit path.
func LoadFile(path string) (Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is user config
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(&cfg)
	cfg.normalize()
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("EDUMETRICS_DATABASE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("EDUMETRICS_DATABASE_URL"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("EDUMETRICS_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("EDUMETRICS_PLATFORM_URL"); v != "" {
		cfg.Platform.BaseURL = v
	}
	if v := os.Getenv("EDUMETRICS_PLATFORM_TOKEN"); v != "" {
		cfg.Platform.APIToken = v
	}
	if v := os.Getenv("EDUMETRICS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.General.DefaultDays < 1 {
		c.General.DefaultDays = def.General.DefaultDays
	}
	if c.Cost.InputShare < 0 || c.Cost.InputShare > 1 {
		c.Cost.InputShare = def.Cost.InputShare
	}
	if c.Fetch.MaxConcurrency < 1 {
		c.Fetch.MaxConcurrency = def.Fetch.MaxConcurrency
	}
	if c.Fetch.PerModuleLimit < 1 {
		c.Fetch.PerModuleLimit = def.Fetch.PerModuleLimit
	}
	if c.FAQ.Threshold < 1 || c.FAQ.Threshold > 100 {
		c.FAQ.Threshold = def.FAQ.Threshold
	}
	if c.FAQ.MinOccurrences < 1 {
		c.FAQ.MinOccurrences = def.FAQ.MinOccurrences
	}
	if c.FAQ.MaxSamples < 1 {
		c.FAQ.MaxSamples = def.FAQ.MaxSamples
	}
	if c.Store.Driver == "" {
		c.Store.Driver = def.Store.Driver
	}
	if c.TUI.RefreshIntervalSec < 10 {
		c.TUI.RefreshIntervalSec = def.TUI.RefreshIntervalSec
	}
	if c.Daemon.IntervalSeconds < 2 {
		c.Daemon.IntervalSeconds = def.Daemon.IntervalSeconds
	}
}

// Location resolves the configured timezone, falling back to local time.
func (c Config) Location() *time.Location {
	switch c.General.Timezone {
	case "", "Local":
		return time.Local
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// DatabaseDSN returns the configured DSN, or the default SQLite file for the sqlite driver.
func (c Config) DatabaseDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}
	if c.Store.Driver == "sqlite" {
		return filepath.Join(DataDir(), "edumetrics.db")
	}
	return ""
}
