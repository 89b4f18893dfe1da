// Package stream provides event distribution and the periodic account
// reconciler.
package stream

import (
	"context"
	"sync"
	"time"

	"tradedesk/internal/engine"
)

// HubConfig holds configuration for the event hub.
type HubConfig struct {
	// BufferSize is the size of the internal event channel buffer.
	BufferSize int
	// SubscriberBufferSize is the size of each subscriber's channel buffer.
	SubscriberBufferSize int
}

// DefaultHubConfig returns the default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		BufferSize:           1000,
		SubscriberBufferSize: 100,
	}
}

// Hub fans engine events out to multiple subscribers via channels. Sends to
// subscribers are non-blocking: a slow consumer drops events rather than
// stalling the engine.
type Hub struct {
	config HubConfig

	mu          sync.RWMutex
	subscribers []*Subscriber
	eventChan   chan engine.Event
	done        chan struct{}
	started     bool

	// Metrics
	metricsMu       sync.RWMutex
	eventsReceived  uint64
	eventsBroadcast uint64
	eventsDropped   uint64
}

// Subscriber represents a channel subscriber with metadata.
type Subscriber struct {
	ID           string
	Kinds        map[engine.EventKind]bool // empty = all kinds
	Channel      chan engine.Event
	DroppedCount int
	CreatedAt    time.Time
}

// NewHub creates a new event hub with default configuration.
func NewHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig())
}

// NewHubWithConfig creates a new event hub with custom configuration.
func NewHubWithConfig(config HubConfig) *Hub {
	return &Hub{
		config:    config,
		eventChan: make(chan engine.Event, config.BufferSize),
		done:      make(chan struct{}),
	}
}

// OnEvent implements engine.EventSink: register the hub on the engine with
// AddSink and every engine event flows through it.
func (h *Hub) OnEvent(ev engine.Event) {
	h.Publish(ev)
}

// Start begins the hub's distribution loop.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	go h.broadcastLoop(ctx)
}

func (h *Hub) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case ev := <-h.eventChan:
			h.metricsMu.Lock()
			h.eventsReceived++
			h.metricsMu.Unlock()

			h.broadcast(ev)
		}
	}
}

// Stop stops the hub and closes all subscriber channels.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return
	}
	close(h.done)
	h.started = false

	for _, sub := range h.subscribers {
		close(sub.Channel)
	}
	h.subscribers = nil
}

// Subscribe adds a subscriber for the given event kinds (none = all) and
// returns a channel to receive them.
func (h *Hub) Subscribe(kinds ...engine.EventKind) <-chan engine.Event {
	return h.SubscribeWithID("", kinds...)
}

// SubscribeWithID adds a subscriber with a specific id.
func (h *Hub) SubscribeWithID(id string, kinds ...engine.EventKind) <-chan engine.Event {
	kindSet := make(map[engine.EventKind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}
	sub := &Subscriber{
		ID:        id,
		Kinds:     kindSet,
		Channel:   make(chan engine.Event, h.config.SubscriberBufferSize),
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	h.subscribers = append(h.subscribers, sub)
	h.mu.Unlock()

	return sub.Channel
}

// Unsubscribe removes a subscriber channel.
func (h *Hub) Unsubscribe(ch <-chan engine.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sub := range h.subscribers {
		if sub.Channel == ch {
			close(sub.Channel)
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			return
		}
	}
}

// Publish sends an event to the hub for distribution. Non-blocking: when
// the internal buffer is full the event is dropped.
func (h *Hub) Publish(ev engine.Event) {
	select {
	case h.eventChan <- ev:
	default:
		h.metricsMu.Lock()
		h.eventsDropped++
		h.metricsMu.Unlock()
	}
}

// broadcast sends an event to all matching subscribers with non-blocking
// sends so slow consumers cannot block others.
func (h *Hub) broadcast(ev engine.Event) {
	h.mu.RLock()
	subs := make([]*Subscriber, len(h.subscribers))
	copy(subs, h.subscribers)
	h.mu.RUnlock()

	for _, sub := range subs {
		if len(sub.Kinds) > 0 && !sub.Kinds[ev.Kind] {
			continue
		}
		select {
		case sub.Channel <- ev:
			h.metricsMu.Lock()
			h.eventsBroadcast++
			h.metricsMu.Unlock()
		default:
			sub.DroppedCount++
			h.metricsMu.Lock()
			h.eventsDropped++
			h.metricsMu.Unlock()
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// IsStarted returns whether the hub is running.
func (h *Hub) IsStarted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.started
}

// HubMetrics contains hub performance metrics.
type HubMetrics struct {
	EventsReceived  uint64
	EventsBroadcast uint64
	EventsDropped   uint64
	Subscribers     int
}

// GetMetrics returns hub metrics.
func (h *Hub) GetMetrics() HubMetrics {
	h.metricsMu.RLock()
	defer h.metricsMu.RUnlock()

	return HubMetrics{
		EventsReceived:  h.eventsReceived,
		EventsBroadcast: h.eventsBroadcast,
		EventsDropped:   h.eventsDropped,
		Subscribers:     h.SubscriberCount(),
	}
}
