package models

import "time"

// AccountKind distinguishes funded accounts from practice accounts.
type AccountKind string

const (
	AccountLive AccountKind = "live"
	AccountDemo AccountKind = "demo"
)

// Account represents a trading account. Balance is realized capital; Equity,
// MarginUsed, FreeMargin and DailyPnL are derived and recomputed on every
// tick that touches the account.
type Account struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Number   string      `json:"number"`
	Currency string      `json:"currency"`
	Kind     AccountKind `json:"kind"`
	Visible  bool        `json:"visible"`
	Active   bool        `json:"active"`

	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	MarginUsed float64 `json:"margin_used"`
	FreeMargin float64 `json:"free_margin"`
	DailyPnL   float64 `json:"daily_pnl"`
	// DailyStopLevel is the configured daily loss cutoff, informational only.
	DailyStopLevel float64 `json:"daily_stop_level"`

	CreatedAt time.Time `json:"created_at"`
}

// NewPlaceholderAccount creates a minimal USD account for an id the engine
// has not seen before. Used when selecting or placing into an unknown account.
func NewPlaceholderAccount(id string) *Account {
	return &Account{
		ID:        id,
		Name:      "Account " + id,
		Number:    id,
		Currency:  "USD",
		Kind:      AccountDemo,
		Visible:   true,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}
