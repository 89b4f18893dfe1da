package engine

import (
	"time"

	"tradedesk/internal/models"
)

// AddAlert registers a price alert for a symbol. The alert's observed market
// price is seeded from the symbol's current stored price and is refreshed on
// every subsequent tick. Alerts are inert: display only, no trigger logic.
func (e *Engine) AddAlert(symbol string, price float64) *models.Alert {
	now := time.Now().UTC()

	e.mu.Lock()
	alert := &models.Alert{
		ID:          models.NewID(),
		Symbol:      symbol,
		AlertPrice:  price,
		MarketPrice: e.prices[symbol],
		CreatedAt:   now,
	}
	e.alerts = append(e.alerts, alert)
	e.mu.Unlock()

	e.emit([]Event{{Kind: EventAlertAdded, Time: now, Symbol: symbol, Price: price, Alert: cloneAlert(alert)}})
	return cloneAlert(alert)
}

// RemoveAlert deletes an alert by id. Unknown ids are a no-op.
func (e *Engine) RemoveAlert(id string) bool {
	e.mu.Lock()
	var removed *models.Alert
	for i, alert := range e.alerts {
		if alert.ID == id {
			removed = alert
			e.alerts = append(e.alerts[:i], e.alerts[i+1:]...)
			break
		}
	}
	e.mu.Unlock()

	if removed == nil {
		return false
	}
	e.emit([]Event{{Kind: EventAlertRemoved, Time: time.Now().UTC(), Symbol: removed.Symbol, Alert: removed}})
	return true
}

// ClearAlerts removes every alert.
func (e *Engine) ClearAlerts() int {
	e.mu.Lock()
	n := len(e.alerts)
	e.alerts = nil
	e.mu.Unlock()
	return n
}

// Alerts returns copies of all registered alerts.
func (e *Engine) Alerts() []models.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.Alert, 0, len(e.alerts))
	for _, alert := range e.alerts {
		out = append(out, *alert)
	}
	return out
}

func cloneAlert(a *models.Alert) *models.Alert {
	c := *a
	return &c
}
