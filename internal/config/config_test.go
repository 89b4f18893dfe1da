package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesTemplateAndUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	// Template written on first run.
	_, statErr := os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, statErr)

	assert.Equal(t, time.Second, cfg.Simulator.Interval)
	assert.InDelta(t, 0.0002, cfg.Simulator.Jitter, 1e-12)
	assert.Equal(t, 5, cfg.Simulator.PriceDecimals)
	assert.Equal(t, 2*time.Second, cfg.Reconciler.Interval)
	assert.InDelta(t, 10000.0, cfg.Trading.InitialBalance, 1e-9)
	assert.Equal(t, "FX:EURUSD", cfg.Trading.ChartSymbol)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, "all", cfg.Notifications.Level)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[simulator]
interval = "250ms"
jitter = 0.001
price_decimals = 3

[trading]
initial_balance = 2500.0

[[accounts]]
id = "7"
name = "Custom"
balance = 1234.0
kind = "demo"

[[symbols]]
symbol = "USDJPY"
price = 150.0
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Simulator.Interval)
	assert.InDelta(t, 0.001, cfg.Simulator.Jitter, 1e-12)
	assert.Equal(t, 3, cfg.Simulator.PriceDecimals)
	assert.InDelta(t, 2500.0, cfg.Trading.InitialBalance, 1e-9)

	require.Len(t, cfg.Accounts, 1)
	assert.Equal(t, "7", cfg.Accounts[0].ID)
	assert.InDelta(t, 1234.0, cfg.Accounts[0].Balance, 1e-9)

	require.Len(t, cfg.Symbols, 1)
	assert.Equal(t, "USDJPY", cfg.Symbols[0].Symbol)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
[notifications]
level = "sometimes"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notification level")
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())

	cfg = &Config{Simulator: SimulatorConfig{Jitter: -1}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Simulator: SimulatorConfig{PriceDecimals: 11}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Trading: TradingConfig{InitialBalance: -5}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Accounts: []AccountSeed{{ID: ""}}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Accounts: []AccountSeed{{ID: "1", Kind: "paper"}}}
	assert.Error(t, cfg.Validate())

	cfg = &Config{Symbols: []SymbolSeed{{Symbol: "EURUSD", Price: 0}}}
	assert.Error(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADEDESK_DB_PATH", "/tmp/override.db")
	t.Setenv("TRADEDESK_WEBHOOK_URL", "https://example.com/hook")
	t.Setenv("TRADEDESK_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Store.Path)
	assert.Equal(t, "https://example.com/hook", cfg.Notifications.Webhook.URL)
	assert.True(t, cfg.Notifications.Webhook.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestSeedFallbacks(t *testing.T) {
	cfg := &Config{}

	accounts := cfg.SeedAccounts()
	require.Len(t, accounts, 4)
	assert.Equal(t, "1", accounts[0].ID)
	assert.InDelta(t, 10000.0, accounts[0].Balance, 1e-9)
	// Daily stop defaults to 5% of balance.
	for _, a := range accounts {
		assert.InDelta(t, a.Balance*0.05, a.DailyStopLevel, 1e-9)
	}

	symbols := cfg.SeedSymbols()
	require.Len(t, symbols, 2)
	assert.Equal(t, "EURUSD", symbols[0].Symbol)
	assert.InDelta(t, 1.085, symbols[0].Price, 1e-12)

	// Configured seeds win over the defaults.
	cfg.Accounts = []AccountSeed{{ID: "x", Balance: 1}}
	assert.Len(t, cfg.SeedAccounts(), 1)
}
