// Package config provides configuration management for the trading desk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Simulator     SimulatorConfig    `mapstructure:"simulator"`
	Reconciler    ReconcilerConfig   `mapstructure:"reconciler"`
	Trading       TradingConfig      `mapstructure:"trading"`
	Store         StoreConfig        `mapstructure:"store"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Accounts      []AccountSeed      `mapstructure:"accounts"`
	Symbols       []SymbolSeed       `mapstructure:"symbols"`
}

// SimulatorConfig holds price feed simulator configuration.
type SimulatorConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	Jitter        float64       `mapstructure:"jitter"`
	PriceDecimals int           `mapstructure:"price_decimals"`
}

// ReconcilerConfig holds account reconciler configuration.
type ReconcilerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// TradingConfig holds trading-related configuration.
type TradingConfig struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
	ChartSymbol    string  `mapstructure:"chart_symbol"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	Path     string        `mapstructure:"path"`
	Autosave time.Duration `mapstructure:"autosave"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Level   string        `mapstructure:"level"` // all, trades_only, errors_only
	Bell    bool          `mapstructure:"bell"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// AccountSeed describes an account created on first run.
type AccountSeed struct {
	ID             string  `mapstructure:"id"`
	Name           string  `mapstructure:"name"`
	Number         string  `mapstructure:"number"`
	Kind           string  `mapstructure:"kind"`
	Currency       string  `mapstructure:"currency"`
	Balance        float64 `mapstructure:"balance"`
	DailyStopLevel float64 `mapstructure:"daily_stop_level"`
}

// SymbolSeed describes a symbol seeded into the price table on first run.
type SymbolSeed struct {
	Symbol string  `mapstructure:"symbol"`
	Price  float64 `mapstructure:"price"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradedesk"
	}
	return filepath.Join(home, ".config", "tradedesk")
}

// DefaultDBPath returns the default database location.
func DefaultDBPath() string {
	return filepath.Join(DefaultConfigDir(), "tradedesk.db")
}

// Load loads configuration from the specified directory. If configDir is
// empty, uses the default config directory. A missing config file is created
// from the template and the defaults are used for this run.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulator.interval", "1s")
	v.SetDefault("simulator.jitter", 0.0002)
	v.SetDefault("simulator.price_decimals", 5)

	v.SetDefault("reconciler.interval", "2s")

	v.SetDefault("trading.initial_balance", 10000.0)
	v.SetDefault("trading.chart_symbol", "FX:EURUSD")

	v.SetDefault("store.path", DefaultDBPath())
	v.SetDefault("store.autosave", "5s")

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.level", "all")
	v.SetDefault("notifications.bell", false)
	v.SetDefault("notifications.webhook.enabled", false)
	v.SetDefault("notifications.webhook.url", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEDESK_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("TRADEDESK_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Webhook.URL = v
		cfg.Notifications.Webhook.Enabled = true
	}
	if v := os.Getenv("TRADEDESK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Simulator.Interval < 0 {
		return fmt.Errorf("simulator interval must be non-negative")
	}
	if c.Simulator.Jitter < 0 {
		return fmt.Errorf("simulator jitter must be non-negative")
	}
	if c.Simulator.PriceDecimals < 0 || c.Simulator.PriceDecimals > 10 {
		return fmt.Errorf("simulator price_decimals must be between 0 and 10")
	}
	if c.Reconciler.Interval < 0 {
		return fmt.Errorf("reconciler interval must be non-negative")
	}
	if c.Trading.InitialBalance < 0 {
		return fmt.Errorf("initial_balance must be non-negative")
	}
	switch c.Notifications.Level {
	case "", "all", "trades_only", "errors_only":
	default:
		return fmt.Errorf("invalid notification level: %s (must be 'all', 'trades_only' or 'errors_only')", c.Notifications.Level)
	}
	for i, acc := range c.Accounts {
		if acc.ID == "" {
			return fmt.Errorf("accounts[%d]: id is required", i)
		}
		if acc.Balance < 0 {
			return fmt.Errorf("accounts[%d]: balance must be non-negative", i)
		}
		if acc.Kind != "" && acc.Kind != "live" && acc.Kind != "demo" {
			return fmt.Errorf("accounts[%d]: invalid kind %q (must be 'live' or 'demo')", i, acc.Kind)
		}
	}
	for i, sym := range c.Symbols {
		if sym.Symbol == "" {
			return fmt.Errorf("symbols[%d]: symbol is required", i)
		}
		if sym.Price <= 0 {
			return fmt.Errorf("symbols[%d]: price must be positive", i)
		}
	}
	return nil
}

// SeedAccounts returns the configured account seeds, falling back to the
// built-in demo set when none are configured.
func (c *Config) SeedAccounts() []AccountSeed {
	if len(c.Accounts) > 0 {
		return c.Accounts
	}
	return defaultAccountSeeds()
}

// SeedSymbols returns the configured symbol seeds, falling back to the
// built-in market when none are configured.
func (c *Config) SeedSymbols() []SymbolSeed {
	if len(c.Symbols) > 0 {
		return c.Symbols
	}
	return defaultSymbolSeeds()
}

func defaultAccountSeeds() []AccountSeed {
	return []AccountSeed{
		{ID: "1", Name: "Main Account", Number: "123456", Kind: "demo", Currency: "USD", Balance: 10000, DailyStopLevel: 500},
		{ID: "2", Name: "Scalping Account", Number: "789012", Kind: "demo", Currency: "USD", Balance: 5000, DailyStopLevel: 250},
		{ID: "3", Name: "Swing Account", Number: "345678", Kind: "demo", Currency: "USD", Balance: 25000, DailyStopLevel: 1250},
		{ID: "4", Name: "Test Account", Number: "901234", Kind: "demo", Currency: "USD", Balance: 2000, DailyStopLevel: 100},
	}
}

func defaultSymbolSeeds() []SymbolSeed {
	return []SymbolSeed{
		{Symbol: "EURUSD", Price: 1.085},
		{Symbol: "GBPJPY", Price: 191.5},
	}
}
