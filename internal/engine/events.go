package engine

import (
	"time"

	"tradedesk/internal/models"
)

// EventKind identifies the type of an engine event.
type EventKind string

const (
	EventPriceUpdated   EventKind = "price_updated"
	EventOrderTriggered EventKind = "order_triggered"
	EventFillRejected   EventKind = "fill_rejected"
	EventPositionOpened EventKind = "position_opened"
	EventPositionClosed EventKind = "position_closed"
	EventAlertAdded     EventKind = "alert_added"
	EventAlertRemoved   EventKind = "alert_removed"
)

// Event describes a state transition outcome. State transitions are pure:
// they return the events they produced, and effect execution (notifications,
// fan-out, persistence) happens afterwards in the event sinks.
type Event struct {
	Kind      EventKind
	Time      time.Time
	AccountID string
	Symbol    string
	Price     float64
	Order     *models.Order
	Position  *models.Position
	Entry     *models.HistoryEntry
	Alert     *models.Alert
	// Reason carries detail for rejections ("insufficient free margin").
	Reason string
}

// EventSink consumes engine events. Sinks are fire-and-forget: delivery is
// best-effort and a panicking sink never breaks the engine.
type EventSink interface {
	OnEvent(Event)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(Event)

// OnEvent implements EventSink.
func (f SinkFunc) OnEvent(ev Event) {
	f(ev)
}
