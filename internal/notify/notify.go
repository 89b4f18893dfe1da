// Package notify provides best-effort notifications for engine events.
// Delivery failures never propagate back into the engine.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradedesk/internal/engine"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationFill      NotificationType = "fill"
	NotificationRejection NotificationType = "rejection"
	NotificationClose     NotificationType = "close"
	NotificationAlert     NotificationType = "alert"
	NotificationInfo      NotificationType = "info"
)

// NotificationLevel represents the notification level filter.
type NotificationLevel string

const (
	LevelAll        NotificationLevel = "all"
	LevelTradesOnly NotificationLevel = "trades_only"
	LevelErrorsOnly NotificationLevel = "errors_only"
)

// Notification represents a notification message.
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]interface{}
	Timestamp time.Time
}

// Channel defines the interface for a notification channel.
type Channel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	IsEnabled() bool
}

// Notifier sends notifications. All sends are fire-and-forget from the
// engine's point of view.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// MultiNotifier fans a notification out to multiple channels with a level
// filter. Channel errors are collected but never block other channels.
type MultiNotifier struct {
	mu       sync.RWMutex
	channels []Channel
	level    NotificationLevel
	log      zerolog.Logger
}

// NewMultiNotifier creates a notifier with the given level filter.
func NewMultiNotifier(level NotificationLevel, logger zerolog.Logger) *MultiNotifier {
	if level == "" {
		level = LevelAll
	}
	return &MultiNotifier{level: level, log: logger}
}

// AddChannel registers a delivery channel.
func (m *MultiNotifier) AddChannel(ch Channel) {
	m.mu.Lock()
	m.channels = append(m.channels, ch)
	m.mu.Unlock()
}

// Send delivers the notification to every enabled channel that passes the
// level filter.
func (m *MultiNotifier) Send(ctx context.Context, n Notification) error {
	if !m.shouldSend(n.Type) {
		return nil
	}

	m.mu.RLock()
	channels := make([]Channel, len(m.channels))
	copy(channels, m.channels)
	m.mu.RUnlock()

	var firstErr error
	for _, ch := range channels {
		if !ch.IsEnabled() {
			continue
		}
		if err := ch.Send(ctx, n); err != nil {
			m.log.Debug().Err(err).Str("channel", ch.Name()).Msg("notification delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *MultiNotifier) shouldSend(t NotificationType) bool {
	switch m.level {
	case LevelTradesOnly:
		return t == NotificationFill || t == NotificationClose || t == NotificationRejection
	case LevelErrorsOnly:
		return t == NotificationRejection
	default:
		return true
	}
}

// Sink bridges engine events into notifications. Register it on the engine
// with AddSink; delivery is best-effort and errors are swallowed.
func Sink(notifier Notifier, logger zerolog.Logger) engine.EventSink {
	return engine.SinkFunc(func(ev engine.Event) {
		n, ok := notificationFor(ev)
		if !ok {
			return
		}
		if err := notifier.Send(context.Background(), n); err != nil {
			logger.Debug().Err(err).Str("kind", string(ev.Kind)).Msg("notification dropped")
		}
	})
}

// notificationFor maps an engine event to a user-facing notification.
// Price updates are too chatty to surface; everything else gets a toast.
func notificationFor(ev engine.Event) (Notification, bool) {
	switch ev.Kind {
	case engine.EventOrderTriggered:
		return Notification{
			Type:      NotificationFill,
			Title:     "Order triggered",
			Message:   fmt.Sprintf("Order %s triggered: %s %.2f %s @ %.5f", ev.Order.ID, ev.Order.Side, ev.Order.Volume, ev.Symbol, ev.Price),
			Timestamp: ev.Time,
		}, true
	case engine.EventFillRejected:
		return Notification{
			Type:      NotificationRejection,
			Title:     "Fill rejected",
			Message:   fmt.Sprintf("Order %s on %s not filled: %s", ev.Order.ID, ev.Symbol, ev.Reason),
			Timestamp: ev.Time,
		}, true
	case engine.EventPositionClosed:
		return Notification{
			Type:      NotificationClose,
			Title:     "Position closed",
			Message:   fmt.Sprintf("%s %.2f %s closed, PnL %.2f", ev.Entry.Side, ev.Entry.Volume, ev.Symbol, ev.Entry.PnL),
			Timestamp: ev.Time,
		}, true
	case engine.EventAlertAdded:
		return Notification{
			Type:      NotificationAlert,
			Title:     "Alert added",
			Message:   fmt.Sprintf("Watching %s at %.5f", ev.Symbol, ev.Price),
			Timestamp: ev.Time,
		}, true
	}
	return Notification{}, false
}
