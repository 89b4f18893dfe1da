package models

import "time"

// Order represents a pending order waiting for its trigger price.
type Order struct {
	ID        string      `json:"id"`
	AccountID string      `json:"account_id"`
	Symbol    string      `json:"symbol"`
	Side      Side        `json:"side"`
	Kind      OrderKind   `json:"kind"`
	Price     float64     `json:"price"`
	Volume    float64     `json:"volume"` // lots
	Status    OrderStatus `json:"status"`
	StopLoss  float64     `json:"sl,omitempty"`
	TakeProfit float64    `json:"tp,omitempty"`
	// CurrentPrice is the last market price observed for the order's symbol,
	// refreshed by the reconciler for display.
	CurrentPrice float64   `json:"current_price,omitempty"`
	PlacedAt     time.Time `json:"placed_at"`
}

// Type returns the combined order type string, e.g. "Buy Limit".
func (o *Order) Type() string {
	return string(o.Side) + " " + string(o.Kind)
}

// ShouldTrigger reports whether a price tick satisfies the order's trigger
// condition. Only pending orders are ever evaluated.
//
//	Buy Limit  triggers at price <= order price
//	Buy Stop   triggers at price >= order price
//	Sell Limit triggers at price >= order price
//	Sell Stop  triggers at price <= order price
func (o *Order) ShouldTrigger(price float64) bool {
	if o.Status != OrderStatusPending {
		return false
	}
	switch {
	case o.Side == SideBuy && o.Kind == OrderKindLimit:
		return price <= o.Price
	case o.Side == SideBuy && o.Kind == OrderKindStop:
		return price >= o.Price
	case o.Side == SideSell && o.Kind == OrderKindLimit:
		return price >= o.Price
	case o.Side == SideSell && o.Kind == OrderKindStop:
		return price <= o.Price
	}
	return false
}

// Position represents an open trading position.
type Position struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	Symbol       string    `json:"symbol"`
	Side         Side      `json:"side"`
	Volume       float64   `json:"volume"` // lots
	OpenPrice    float64   `json:"open_price"`
	OpenTime     time.Time `json:"open_time"`
	StopLoss     float64   `json:"sl,omitempty"`
	TakeProfit   float64   `json:"tp,omitempty"`
	Commission   float64   `json:"commission"`
	Swap         float64   `json:"swap"`
	CurrentPrice float64   `json:"current_price"`
	PnL          float64   `json:"pnl"`
}

// MarkToMarket updates the position's current price and unrealized PnL.
func (p *Position) MarkToMarket(price float64) {
	p.CurrentPrice = price
	p.PnL = UnrealizedPnL(p.Side, p.OpenPrice, price, p.Volume)
}

// Margin returns the margin held against this position.
func (p *Position) Margin() float64 {
	return MarginRequired(p.Volume)
}

// HistoryEntry is an immutable snapshot of a closed position. Entries are
// append-only and never mutated or deleted.
type HistoryEntry struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Volume     float64   `json:"volume"`
	OpenTime   time.Time `json:"open_time"`
	CloseTime  time.Time `json:"close_time"`
	OpenPrice  float64   `json:"open_price"`
	ClosePrice float64   `json:"close_price"`
	PnL        float64   `json:"pnl"`
	Commission float64   `json:"commission"`
	Swap       float64   `json:"swap"`
}

// BalanceSnapshot records an account's derived balances at a point in time.
type BalanceSnapshot struct {
	AccountID  string    `json:"account_id"`
	Balance    float64   `json:"balance"`
	Equity     float64   `json:"equity"`
	MarginUsed float64   `json:"margin_used"`
	MarginFree float64   `json:"margin_free"`
	Time       time.Time `json:"time"`
}
