package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# TradeDesk Configuration

[simulator]
# Tick interval for the price feed simulator
interval = "1s"
# Maximum jitter applied per tick (price moves by (rand - 0.5) * jitter)
jitter = 0.0002
# Decimal places prices are rounded to
price_decimals = 5

[reconciler]
# Interval between account reconciliation passes
interval = "2s"

[trading]
# Starting balance for accounts created on the fly
initial_balance = 10000.0
# Chart symbol, skipped by the simulator (prefix before ':' is stripped)
chart_symbol = "FX:EURUSD"

[store]
# SQLite database path (defaults next to this file)
# path = "~/.config/tradedesk/tradedesk.db"
# How often running state is persisted
autosave = "5s"

[notifications]
# Enable notifications
enabled = true
# Notification level: all, trades_only, errors_only
level = "all"
# Ring the terminal bell on fills and rejections
bell = false

[notifications.webhook]
enabled = false
url = ""

[logging]
# Log level: debug, info, warn, error
level = "info"
# Log file path (empty = default location)
path = ""

# Accounts seeded on first run. Remove or edit as needed.
[[accounts]]
id = "1"
name = "Main Account"
number = "123456"
kind = "demo"
currency = "USD"
balance = 10000.0
daily_stop_level = 500.0

[[accounts]]
id = "2"
name = "Scalping Account"
number = "789012"
kind = "demo"
currency = "USD"
balance = 5000.0
daily_stop_level = 250.0

[[accounts]]
id = "3"
name = "Swing Account"
number = "345678"
kind = "demo"
currency = "USD"
balance = 25000.0
daily_stop_level = 1250.0

[[accounts]]
id = "4"
name = "Test Account"
number = "901234"
kind = "demo"
currency = "USD"
balance = 2000.0
daily_stop_level = 100.0

# Symbols seeded into the price table on first run.
[[symbols]]
symbol = "EURUSD"
price = 1.085

[[symbols]]
symbol = "GBPJPY"
price = 191.5
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
