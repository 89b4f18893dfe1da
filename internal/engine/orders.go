package engine

import (
	"time"

	dErrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// OrderSpec describes a pending order to place.
type OrderSpec struct {
	Symbol     string
	Side       models.Side
	Kind       models.OrderKind
	Price      float64
	Volume     float64 // lots
	StopLoss   float64
	TakeProfit float64
}

func (s OrderSpec) validate() error {
	if s.Symbol == "" {
		return dErrors.ErrInvalidSymbol
	}
	if s.Volume <= 0 {
		return dErrors.NewValidationError("volume", s.Volume, "must be positive")
	}
	if !models.ValidPrice(s.Price) {
		return dErrors.Wrapf(dErrors.ErrInvalidPrice, "order price %v", s.Price)
	}
	if s.Side != models.SideBuy && s.Side != models.SideSell {
		return dErrors.NewValidationError("side", s.Side, "must be Buy or Sell")
	}
	if s.Kind != models.OrderKindLimit && s.Kind != models.OrderKindStop {
		return dErrors.NewValidationError("kind", s.Kind, "must be Limit or Stop")
	}
	return nil
}

// PlaceOrder appends a pending order for the account. An empty account id
// resolves to the current selection; an unknown id gets a placeholder
// account. The order is not evaluated until the next tick of its symbol.
func (e *Engine) PlaceOrder(accountID string, spec OrderSpec) (*models.Order, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	id := e.resolveLocked(accountID)
	if id == "" {
		e.mu.Unlock()
		return nil, dErrors.ErrAccountNotFound
	}
	e.ensureAccountLocked(id)

	ord := &models.Order{
		ID:           models.NewID(),
		AccountID:    id,
		Symbol:       spec.Symbol,
		Side:         spec.Side,
		Kind:         spec.Kind,
		Price:        spec.Price,
		Volume:       spec.Volume,
		Status:       models.OrderStatusPending,
		StopLoss:     spec.StopLoss,
		TakeProfit:   spec.TakeProfit,
		CurrentPrice: e.prices[spec.Symbol],
		PlacedAt:     time.Now().UTC(),
	}
	e.orders[id] = append(e.orders[id], ord)
	e.mu.Unlock()

	e.log.Debug().Str("order_id", ord.ID).Str("account_id", id).
		Str("type", ord.Type()).Str("symbol", ord.Symbol).
		Float64("price", ord.Price).Float64("lots", ord.Volume).
		Msg("order placed")
	return cloneOrder(ord), nil
}

// PlaceMarket opens a position immediately at the current stored price for
// the symbol. The fill is rejected when the account's free margin cannot
// cover the required margin.
func (e *Engine) PlaceMarket(accountID string, side models.Side, lots float64, symbol string) (*models.Position, error) {
	if symbol == "" {
		return nil, dErrors.ErrInvalidSymbol
	}
	if lots <= 0 {
		return nil, dErrors.NewValidationError("volume", lots, "must be positive")
	}

	e.mu.Lock()
	id := e.resolveLocked(accountID)
	if id == "" {
		e.mu.Unlock()
		return nil, dErrors.ErrAccountNotFound
	}
	acct := e.ensureAccountLocked(id)

	price, ok := e.prices[symbol]
	if !ok {
		e.mu.Unlock()
		return nil, dErrors.Wrapf(dErrors.ErrSymbolNotFound, "no price for %s", symbol)
	}

	required := models.MarginRequired(lots)
	if acct.FreeMargin < required {
		free := acct.FreeMargin
		e.mu.Unlock()
		return nil, dErrors.NewMarginError(id, required, free)
	}

	now := time.Now().UTC()
	commission := models.CommissionFor(lots)
	pos := &models.Position{
		ID:           models.NewID(),
		AccountID:    id,
		Symbol:       symbol,
		Side:         side,
		Volume:       lots,
		OpenPrice:    price,
		OpenTime:     now,
		Commission:   commission,
		CurrentPrice: price,
	}
	e.positions[id] = append(e.positions[id], pos)
	acct.Balance -= commission
	acct.MarginUsed += required
	e.recomputeLocked(acct)
	e.mu.Unlock()

	e.emit([]Event{{
		Kind: EventPositionOpened, Time: now, AccountID: id,
		Symbol: symbol, Price: price, Position: clonePosition(pos),
	}})
	return clonePosition(pos), nil
}

// CancelOrder removes an order only while it is still pending. Cancelling a
// triggered or already-cancelled order is a no-op; the return reports
// whether anything changed.
func (e *Engine) CancelOrder(accountID, orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.resolveLocked(accountID)
	orders := e.orders[id]
	for i, ord := range orders {
		if ord.ID == orderID && ord.Status == models.OrderStatusPending {
			ord.Status = models.OrderStatusCancelled
			e.orders[id] = append(orders[:i], orders[i+1:]...)
			return true
		}
	}
	return false
}

// CancelAllPending removes every pending order for the account and returns
// how many were cancelled.
func (e *Engine) CancelAllPending(accountID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.resolveLocked(accountID)
	remaining := e.orders[id][:0]
	cancelled := 0
	for _, ord := range e.orders[id] {
		if ord.Status == models.OrderStatusPending {
			ord.Status = models.OrderStatusCancelled
			cancelled++
			continue
		}
		remaining = append(remaining, ord)
	}
	e.orders[id] = remaining
	return cancelled
}

// Orders returns copies of the account's pending orders.
func (e *Engine) Orders(accountID string) []models.Order {
	e.mu.Lock()
	defer e.mu.Unlock()

	orders := e.orders[e.resolveLocked(accountID)]
	out := make([]models.Order, 0, len(orders))
	for _, ord := range orders {
		out = append(out, *ord)
	}
	return out
}
