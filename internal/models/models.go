// Package models provides domain models for the simulated trading engine.
package models

import (
	"math"
	"time"
)

// Contract constants for the simulated market. Every instrument trades with
// a fixed contract size and account leverage.
const (
	// ContractSize is the number of units in one standard lot.
	ContractSize = 100_000
	// Leverage is the fixed account leverage (1:100).
	Leverage = 100
	// CommissionPerLot is the fixed commission charged per lot on fill.
	CommissionPerLot = 4.0
)

// Side represents the direction of an order or position.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Sign returns +1 for a buy and -1 for a sell.
func (s Side) Sign() float64 {
	if s == SideSell {
		return -1
	}
	return 1
}

// OrderKind represents the trigger semantics of a pending order.
type OrderKind string

const (
	OrderKindLimit OrderKind = "Limit"
	OrderKindStop  OrderKind = "Stop"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusTriggered OrderStatus = "triggered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// TickSource identifies where a price update came from.
type TickSource string

const (
	TickSourceSimulator TickSource = "simulator"
	TickSourceChart     TickSource = "chart"
	TickSourceManual    TickSource = "manual"
)

// Tick represents a single price update for a symbol.
type Tick struct {
	Symbol string
	Price  float64
	Time   time.Time
	Source TickSource
}

// Quote represents a display quote: current price plus day-open change.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	DayOpen       float64 `json:"day_open"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// NewQuote derives a display quote from a price and its day-open.
func NewQuote(symbol string, price, dayOpen float64) Quote {
	q := Quote{Symbol: symbol, Price: price, DayOpen: dayOpen}
	if dayOpen != 0 {
		q.Change = price - dayOpen
		q.ChangePercent = (price - dayOpen) / dayOpen * 100
	}
	return q
}

// MarginRequired returns the margin required to hold a position of the given
// volume in lots: volume × ContractSize / Leverage.
func MarginRequired(lots float64) float64 {
	return lots * ContractSize / Leverage
}

// CommissionFor returns the fixed commission for a fill of the given volume.
func CommissionFor(lots float64) float64 {
	return CommissionPerLot * lots
}

// UnrealizedPnL computes the mark-to-market profit of a position:
// (price − openPrice) × lots × ContractSize, negated for sells.
func UnrealizedPnL(side Side, openPrice, price, lots float64) float64 {
	return (price - openPrice) * lots * ContractSize * side.Sign()
}

// ValidPrice reports whether a price is usable as a tick: finite and positive.
func ValidPrice(price float64) bool {
	return !math.IsNaN(price) && !math.IsInf(price, 0) && price > 0
}
