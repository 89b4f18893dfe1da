package models

import "time"

// Alert represents a user-defined price watch. Alerts carry no trigger or
// delivery semantics: MarketPrice is refreshed passively on every tick of
// the symbol and the pair is surfaced for display only.
type Alert struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	AlertPrice float64   `json:"alert_price"`
	// MarketPrice is the last observed market price for the symbol.
	MarketPrice float64  `json:"market_price"`
	CreatedAt  time.Time `json:"created_at"`
}
