package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarginRequired(t *testing.T) {
	// lots × 100,000 / 100
	assert.InDelta(t, 1000.0, MarginRequired(1.0), 1e-9)
	assert.InDelta(t, 500.0, MarginRequired(0.5), 1e-9)
	assert.InDelta(t, 2500.0, MarginRequired(2.5), 1e-9)
	assert.InDelta(t, 0.0, MarginRequired(0), 1e-9)
}

func TestCommissionFor(t *testing.T) {
	assert.InDelta(t, 4.0, CommissionFor(1.0), 1e-9)
	assert.InDelta(t, 2.0, CommissionFor(0.5), 1e-9)
	assert.InDelta(t, 10.0, CommissionFor(2.5), 1e-9)
}

func TestUnrealizedPnL(t *testing.T) {
	// 1 lot Buy EURUSD from 1.0850 to 1.0875: +0.0025 * 100,000 = 250
	assert.InDelta(t, 250.0, UnrealizedPnL(SideBuy, 1.0850, 1.0875, 1.0), 1e-6)
	// same move against a Sell
	assert.InDelta(t, -250.0, UnrealizedPnL(SideSell, 1.0850, 1.0875, 1.0), 1e-6)
	// loss on a buy
	assert.InDelta(t, -250.0, UnrealizedPnL(SideBuy, 1.0875, 1.0850, 1.0), 1e-6)
	// volume scales linearly
	assert.InDelta(t, 125.0, UnrealizedPnL(SideBuy, 1.0850, 1.0875, 0.5), 1e-6)
	// flat price is zero PnL
	assert.InDelta(t, 0.0, UnrealizedPnL(SideBuy, 1.0850, 1.0850, 1.0), 1e-9)
}

func TestValidPrice(t *testing.T) {
	assert.True(t, ValidPrice(1.085))
	assert.True(t, ValidPrice(0.00001))
	assert.False(t, ValidPrice(0))
	assert.False(t, ValidPrice(-1.0))
	assert.False(t, ValidPrice(math.NaN()))
	assert.False(t, ValidPrice(math.Inf(1)))
	assert.False(t, ValidPrice(math.Inf(-1)))
}

func TestNewQuote(t *testing.T) {
	q := NewQuote("EURUSD", 1.0900, 1.0850)
	assert.InDelta(t, 0.0050, q.Change, 1e-9)
	assert.InDelta(t, 0.4608, q.ChangePercent, 1e-3)

	// zero day-open yields no change figures
	q = NewQuote("GBPJPY", 191.5, 0)
	assert.Zero(t, q.Change)
	assert.Zero(t, q.ChangePercent)
}

func TestOrderShouldTrigger(t *testing.T) {
	cases := []struct {
		name    string
		side    Side
		kind    OrderKind
		order   float64
		tick    float64
		trigger bool
	}{
		{"buy limit below", SideBuy, OrderKindLimit, 1.0800, 1.0795, true},
		{"buy limit exact", SideBuy, OrderKindLimit, 1.0800, 1.0800, true},
		{"buy limit above", SideBuy, OrderKindLimit, 1.0800, 1.0805, false},
		{"buy stop above", SideBuy, OrderKindStop, 1.0800, 1.0805, true},
		{"buy stop exact", SideBuy, OrderKindStop, 1.0800, 1.0800, true},
		{"buy stop below", SideBuy, OrderKindStop, 1.0800, 1.0795, false},
		{"sell limit above", SideSell, OrderKindLimit, 1.0800, 1.0805, true},
		{"sell limit below", SideSell, OrderKindLimit, 1.0800, 1.0795, false},
		{"sell stop below", SideSell, OrderKindStop, 1.0800, 1.0795, true},
		{"sell stop above", SideSell, OrderKindStop, 1.0800, 1.0805, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &Order{
				Side:   tc.side,
				Kind:   tc.kind,
				Price:  tc.order,
				Status: OrderStatusPending,
			}
			assert.Equal(t, tc.trigger, o.ShouldTrigger(tc.tick))
		})
	}
}

func TestOrderShouldTriggerIgnoresNonPending(t *testing.T) {
	o := &Order{
		Side:   SideBuy,
		Kind:   OrderKindLimit,
		Price:  1.0800,
		Status: OrderStatusCancelled,
	}
	assert.False(t, o.ShouldTrigger(1.0700))

	o.Status = OrderStatusTriggered
	assert.False(t, o.ShouldTrigger(1.0700))
}

func TestOrderType(t *testing.T) {
	o := &Order{Side: SideBuy, Kind: OrderKindLimit}
	assert.Equal(t, "Buy Limit", o.Type())

	o = &Order{Side: SideSell, Kind: OrderKindStop}
	assert.Equal(t, "Sell Stop", o.Type())
}

func TestPositionMarkToMarket(t *testing.T) {
	p := &Position{
		Side:      SideBuy,
		Volume:    1.0,
		OpenPrice: 1.0850,
	}
	p.MarkToMarket(1.0875)
	assert.InDelta(t, 1.0875, p.CurrentPrice, 1e-9)
	assert.InDelta(t, 250.0, p.PnL, 1e-6)
	assert.InDelta(t, 1000.0, p.Margin(), 1e-9)
}

func TestNewIDIsMonotonic(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Len(t, id, 26)
		assert.Greater(t, id, prev)
		prev = id
	}
}
