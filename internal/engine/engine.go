// Package engine implements the simulated multi-account trading engine:
// price table, pending orders, open positions, closed-trade history, price
// alerts and the derived account balances, all updated atomically per tick.
package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	dErrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// maxBalanceSnapshots bounds the per-account equity history kept in memory.
const maxBalanceSnapshots = 500

// Engine is the authoritative store for all simulated trading state.
// Account id is a first-class key everywhere; the "current" account is only
// a selection pointer for interactive surfaces.
//
// All mutations take the engine mutex and apply as a single atomic state
// transition. The transition computes new state plus a list of events;
// events are delivered to sinks after the lock is released.
type Engine struct {
	mu  sync.Mutex
	log zerolog.Logger

	prices      map[string]float64
	dayOpens    map[string]float64
	chartSymbol string

	accountIDs []string // stable listing order
	accounts   map[string]*models.Account
	orders     map[string][]*models.Order
	positions  map[string][]*models.Position
	history    map[string][]models.HistoryEntry
	balances   map[string][]models.BalanceSnapshot
	alerts     []*models.Alert

	currentAccount string

	sinksMu sync.RWMutex
	sinks   []EventSink
}

// New creates an empty engine.
func New(logger zerolog.Logger) *Engine {
	return &Engine{
		log:       logger,
		prices:    make(map[string]float64),
		dayOpens:  make(map[string]float64),
		accounts:  make(map[string]*models.Account),
		orders:    make(map[string][]*models.Order),
		positions: make(map[string][]*models.Position),
		history:   make(map[string][]models.HistoryEntry),
		balances:  make(map[string][]models.BalanceSnapshot),
	}
}

// AddSink registers an event sink. Sinks receive every event the engine
// emits, outside the engine lock.
func (e *Engine) AddSink(sink EventSink) {
	e.sinksMu.Lock()
	e.sinks = append(e.sinks, sink)
	e.sinksMu.Unlock()
}

// emit delivers events to all sinks. Must be called without the engine lock
// held. A panicking sink is recovered and logged so the tick loop survives.
func (e *Engine) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	e.sinksMu.RLock()
	sinks := make([]EventSink, len(e.sinks))
	copy(sinks, e.sinks)
	e.sinksMu.RUnlock()

	for _, ev := range events {
		for _, sink := range sinks {
			func() {
				defer func() {
					if r := recover(); r != nil {
						e.log.Warn().Interface("panic", r).Str("kind", string(ev.Kind)).Msg("event sink panicked")
					}
				}()
				sink.OnEvent(ev)
			}()
		}
	}
}

// UpdatePrice applies a price tick at the current wall-clock time.
func (e *Engine) UpdatePrice(symbol string, price float64) error {
	return e.UpdatePriceAt(symbol, price, time.Now().UTC())
}

// UpdatePriceAt applies a price tick, in order and atomically:
//
//  1. recompute unrealized PnL for every open position on the symbol
//  2. evaluate pending orders on the symbol; fill triggered orders at the
//     tick price, charging commission and margin. A fill the account cannot
//     afford is rejected with an explicit event and the order stays pending.
//  3. recompute equity and free margin per account
//  4. record the price; seed the symbol's day-open on first observation
//  5. refresh the observed market price on alerts for the symbol
func (e *Engine) UpdatePriceAt(symbol string, price float64, at time.Time) error {
	if symbol == "" {
		return dErrors.ErrInvalidSymbol
	}
	if !models.ValidPrice(price) {
		return dErrors.Wrapf(dErrors.ErrInvalidPrice, "tick %s %v", symbol, price)
	}

	e.mu.Lock()
	events := e.applyTickLocked(symbol, price, at)
	e.mu.Unlock()

	e.emit(events)
	return nil
}

// applyTickLocked is the pure tick transition. Caller holds the lock.
func (e *Engine) applyTickLocked(symbol string, price float64, at time.Time) []Event {
	events := []Event{{Kind: EventPriceUpdated, Time: at, Symbol: symbol, Price: price}}

	for _, id := range e.accountIDs {
		acct := e.accounts[id]

		// 1) Mark open positions on this symbol to market.
		for _, pos := range e.positions[id] {
			if pos.Symbol == symbol {
				pos.MarkToMarket(price)
			}
		}

		// 2) Evaluate pending orders on this symbol.
		remaining := e.orders[id][:0]
		for _, ord := range e.orders[id] {
			if ord.Symbol != symbol || !ord.ShouldTrigger(price) {
				remaining = append(remaining, ord)
				continue
			}

			required := models.MarginRequired(ord.Volume)
			if acct.FreeMargin < required {
				// The account cannot afford the fill. The order stays in the
				// pending set and is re-evaluated on the next tick.
				events = append(events, Event{
					Kind:      EventFillRejected,
					Time:      at,
					AccountID: id,
					Symbol:    symbol,
					Price:     price,
					Order:     cloneOrder(ord),
					Reason:    dErrors.NewMarginError(id, required, acct.FreeMargin).Error(),
				})
				remaining = append(remaining, ord)
				continue
			}

			ord.Status = models.OrderStatusTriggered
			commission := models.CommissionFor(ord.Volume)
			pos := &models.Position{
				ID:           models.NewID(),
				AccountID:    id,
				Symbol:       symbol,
				Side:         ord.Side,
				Volume:       ord.Volume,
				OpenPrice:    price,
				OpenTime:     at,
				StopLoss:     ord.StopLoss,
				TakeProfit:   ord.TakeProfit,
				Commission:   commission,
				CurrentPrice: price,
			}
			e.positions[id] = append(e.positions[id], pos)
			acct.Balance -= commission
			acct.MarginUsed += required

			events = append(events,
				Event{Kind: EventOrderTriggered, Time: at, AccountID: id, Symbol: symbol, Price: price, Order: cloneOrder(ord)},
				Event{Kind: EventPositionOpened, Time: at, AccountID: id, Symbol: symbol, Price: price, Position: clonePosition(pos)},
			)
		}
		e.orders[id] = remaining

		// 3) Recompute derived balances.
		e.recomputeLocked(acct)
	}

	// 4) Record the price; day-open is "first price ever observed".
	e.prices[symbol] = price
	if _, ok := e.dayOpens[symbol]; !ok {
		e.dayOpens[symbol] = price
	}

	// 5) Alerts passively track the live market price.
	for _, alert := range e.alerts {
		if alert.Symbol == symbol {
			alert.MarketPrice = price
		}
	}

	return events
}

// recomputeLocked recomputes an account's equity and free margin from its
// open positions: equity = balance + Σ unrealized PnL, free = equity − used.
func (e *Engine) recomputeLocked(acct *models.Account) {
	var totalPnL float64
	for _, pos := range e.positions[acct.ID] {
		totalPnL += pos.PnL
	}
	acct.Equity = acct.Balance + totalPnL
	acct.FreeMargin = acct.Equity - acct.MarginUsed
	acct.DailyPnL = totalPnL
}

// Reconcile recomputes every account's positions, order display prices and
// derived balances against the shared price table, and appends one balance
// snapshot per account. It runs on its own timer, uncoordinated with the
// price simulator; both are single atomic transitions so they may observe
// stale data from each other but cannot corrupt state.
func (e *Engine) Reconcile() []models.BalanceSnapshot {
	now := time.Now().UTC()

	e.mu.Lock()
	defer e.mu.Unlock()

	snapshots := make([]models.BalanceSnapshot, 0, len(e.accountIDs))
	for _, id := range e.accountIDs {
		acct := e.accounts[id]

		for _, pos := range e.positions[id] {
			price, ok := e.prices[pos.Symbol]
			if !ok {
				price = pos.CurrentPrice
				if price == 0 {
					price = pos.OpenPrice
				}
			}
			pos.MarkToMarket(price)
		}
		for _, ord := range e.orders[id] {
			if price, ok := e.prices[ord.Symbol]; ok {
				ord.CurrentPrice = price
			}
		}
		e.recomputeLocked(acct)

		snap := models.BalanceSnapshot{
			AccountID:  id,
			Balance:    acct.Balance,
			Equity:     acct.Equity,
			MarginUsed: acct.MarginUsed,
			MarginFree: acct.FreeMargin,
			Time:       now,
		}
		e.balances[id] = append(e.balances[id], snap)
		if len(e.balances[id]) > maxBalanceSnapshots {
			e.balances[id] = e.balances[id][len(e.balances[id])-maxBalanceSnapshots:]
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

// SetChartSymbol records which symbol the chart widget is displaying. The
// simulator skips this symbol so its price always reflects the chart feed.
func (e *Engine) SetChartSymbol(symbol string) {
	e.mu.Lock()
	e.chartSymbol = symbol
	e.mu.Unlock()
}

// ChartSymbol returns the active chart symbol.
func (e *Engine) ChartSymbol() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chartSymbol
}

// Price returns the current price for a symbol.
func (e *Engine) Price(symbol string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.prices[symbol]
	return p, ok
}

// Prices returns a copy of the current price table.
func (e *Engine) Prices() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]float64, len(e.prices))
	for sym, p := range e.prices {
		out[sym] = p
	}
	return out
}

// Quotes returns display quotes (price plus day-open change) for every
// tracked symbol.
func (e *Engine) Quotes() []models.Quote {
	e.mu.Lock()
	defer e.mu.Unlock()
	quotes := make([]models.Quote, 0, len(e.prices))
	for sym, price := range e.prices {
		quotes = append(quotes, models.NewQuote(sym, price, e.dayOpens[sym]))
	}
	return quotes
}

// SeedPrice records a starting price for a symbol without running the tick
// pipeline. Used when loading the demo market.
func (e *Engine) SeedPrice(symbol string, price float64) {
	e.mu.Lock()
	e.prices[symbol] = price
	if _, ok := e.dayOpens[symbol]; !ok {
		e.dayOpens[symbol] = price
	}
	e.mu.Unlock()
}

func cloneOrder(o *models.Order) *models.Order {
	c := *o
	return &c
}

func clonePosition(p *models.Position) *models.Position {
	c := *p
	return &c
}
