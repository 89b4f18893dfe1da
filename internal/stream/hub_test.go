package stream

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/engine"
	"tradedesk/internal/models"
)

func waitFor(t *testing.T, ch <-chan engine.Event) engine.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return engine.Event{}
	}
}

func TestHubDeliversToSubscriber(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	ch := hub.Subscribe()
	hub.Publish(engine.Event{Kind: engine.EventPriceUpdated, Symbol: "EURUSD", Price: 1.0850})

	ev := waitFor(t, ch)
	assert.Equal(t, engine.EventPriceUpdated, ev.Kind)
	assert.Equal(t, "EURUSD", ev.Symbol)
}

func TestHubKindFilter(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	closes := hub.Subscribe(engine.EventPositionClosed)

	hub.Publish(engine.Event{Kind: engine.EventPriceUpdated, Symbol: "EURUSD"})
	hub.Publish(engine.Event{Kind: engine.EventPositionClosed, Symbol: "GBPJPY"})

	ev := waitFor(t, closes)
	assert.Equal(t, engine.EventPositionClosed, ev.Kind)
	assert.Equal(t, "GBPJPY", ev.Symbol)

	select {
	case extra := <-closes:
		t.Fatalf("unexpected extra event: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubAsEngineSink(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	eng := engine.New(zerolog.Nop())
	eng.AddAccount(models.Account{ID: "1", Balance: 10000})
	eng.SeedPrice("EURUSD", 1.0850)
	eng.AddSink(hub)

	opened := hub.Subscribe(engine.EventPositionOpened)
	_, err := eng.PlaceMarket("1", models.SideBuy, 1.0, "EURUSD")
	require.NoError(t, err)

	ev := waitFor(t, opened)
	assert.Equal(t, "1", ev.AccountID)
	require.NotNil(t, ev.Position)
	assert.InDelta(t, 1.0850, ev.Position.OpenPrice, 1e-9)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	assert.Equal(t, 1, hub.SubscriberCount())

	hub.Unsubscribe(ch)
	assert.Equal(t, 0, hub.SubscriberCount())

	// Channel is closed after unsubscribe.
	_, ok := <-ch
	assert.False(t, ok)
}

func TestHubStopClosesSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	ch := hub.Subscribe()

	hub.Stop()
	assert.False(t, hub.IsStarted())

	_, ok := <-ch
	assert.False(t, ok)
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	hub := NewHubWithConfig(HubConfig{BufferSize: 10, SubscriberBufferSize: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	hub.Subscribe() // never drained

	for i := 0; i < 20; i++ {
		hub.Publish(engine.Event{Kind: engine.EventPriceUpdated})
	}

	assert.Eventually(t, func() bool {
		m := hub.GetMetrics()
		return m.EventsDropped > 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconcilerLoop(t *testing.T) {
	eng := engine.New(zerolog.Nop())
	eng.AddAccount(models.Account{ID: "1", Balance: 10000})
	eng.SeedPrice("EURUSD", 1.0850)

	rec := NewReconciler(10*time.Millisecond, eng, zerolog.Nop())
	assert.False(t, rec.IsRunning())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)
	assert.True(t, rec.IsRunning())

	assert.Eventually(t, func() bool {
		return len(eng.BalanceHistory("1")) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	rec.Stop()
	assert.False(t, rec.IsRunning())
}

func TestReconcilerDefaultInterval(t *testing.T) {
	rec := NewReconciler(0, nil, zerolog.Nop())
	assert.Equal(t, 2*time.Second, rec.interval)
}
