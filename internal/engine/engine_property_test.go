package engine

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"tradedesk/internal/models"
)

// Property: after any tick sequence, every account satisfies the balance
// identities: equity = balance + Σ unrealized PnL and
// free margin = equity − margin used.
func TestPropertyBalanceIdentities(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("equity and free margin identities hold", prop.ForAll(
		func(prices []float64, lots float64) bool {
			eng := New(zerolog.Nop())
			eng.AddAccount(models.Account{ID: "1", Balance: 100000})
			eng.SeedPrice("EURUSD", 1.0850)

			if _, err := eng.PlaceMarket("1", models.SideBuy, lots, "EURUSD"); err != nil {
				return true // margin rejection is fine, nothing to check
			}

			for _, p := range prices {
				if err := eng.UpdatePrice("EURUSD", p); err != nil {
					return false
				}
			}

			acct := eng.Account("1")
			var totalPnL float64
			for _, pos := range eng.Positions("1") {
				totalPnL += pos.PnL
			}

			if math.Abs(acct.Equity-(acct.Balance+totalPnL)) > 1e-6 {
				t.Logf("equity %v != balance %v + pnl %v", acct.Equity, acct.Balance, totalPnL)
				return false
			}
			if math.Abs(acct.FreeMargin-(acct.Equity-acct.MarginUsed)) > 1e-6 {
				t.Logf("free %v != equity %v - used %v", acct.FreeMargin, acct.Equity, acct.MarginUsed)
				return false
			}
			return true
		},
		gen.SliceOfN(10, gen.Float64Range(0.5, 2.0)),
		gen.Float64Range(0.01, 5.0),
	))

	properties.TestingRun(t)
}

// Property: a pending order fills on a tick exactly when its trigger
// condition is satisfied, and the resulting position opens at the tick price.
func TestPropertyTriggerSemantics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	sides := gen.OneConstOf(models.SideBuy, models.SideSell)
	kinds := gen.OneConstOf(models.OrderKindLimit, models.OrderKindStop)

	properties.Property("fill iff trigger condition", prop.ForAll(
		func(side models.Side, kind models.OrderKind, orderPrice, tickPrice float64) bool {
			eng := New(zerolog.Nop())
			eng.AddAccount(models.Account{ID: "1", Balance: 1000000})
			eng.SeedPrice("EURUSD", orderPrice)

			_, err := eng.PlaceOrder("1", OrderSpec{
				Symbol: "EURUSD",
				Side:   side,
				Kind:   kind,
				Price:  orderPrice,
				Volume: 1.0,
			})
			if err != nil {
				return false
			}
			if err := eng.UpdatePrice("EURUSD", tickPrice); err != nil {
				return false
			}

			var shouldFill bool
			switch {
			case side == models.SideBuy && kind == models.OrderKindLimit:
				shouldFill = tickPrice <= orderPrice
			case side == models.SideBuy && kind == models.OrderKindStop:
				shouldFill = tickPrice >= orderPrice
			case side == models.SideSell && kind == models.OrderKindLimit:
				shouldFill = tickPrice >= orderPrice
			case side == models.SideSell && kind == models.OrderKindStop:
				shouldFill = tickPrice <= orderPrice
			}

			positions := eng.Positions("1")
			if shouldFill {
				if len(positions) != 1 || len(eng.Orders("1")) != 0 {
					return false
				}
				return math.Abs(positions[0].OpenPrice-tickPrice) < 1e-12
			}
			return len(positions) == 0 && len(eng.Orders("1")) == 1
		},
		sides,
		kinds,
		gen.Float64Range(0.5, 2.0),
		gen.Float64Range(0.5, 2.0),
	))

	properties.TestingRun(t)
}

// Property: closing all positions realizes exactly the marked PnL minus
// commissions, and history grows by the number of closed positions.
func TestPropertyCloseConservation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("close credits pnl minus commission", prop.ForAll(
		func(lots []float64, closeAt float64) bool {
			eng := New(zerolog.Nop())
			eng.AddAccount(models.Account{ID: "1", Balance: 1000000})
			eng.SeedPrice("EURUSD", 1.0850)

			opened := 0
			for _, l := range lots {
				if _, err := eng.PlaceMarket("1", models.SideBuy, l, "EURUSD"); err == nil {
					opened++
				}
			}
			if err := eng.UpdatePrice("EURUSD", closeAt); err != nil {
				return false
			}

			before := eng.Account("1")
			var expected float64
			for _, pos := range eng.Positions("1") {
				expected += pos.PnL - pos.Commission
			}

			entries := eng.CloseAll("1")
			if len(entries) != opened {
				return false
			}

			after := eng.Account("1")
			if math.Abs(after.Balance-(before.Balance+expected)) > 1e-6 {
				return false
			}
			if math.Abs(after.MarginUsed) > 1e-9 {
				return false
			}
			return len(eng.History("1")) == opened
		},
		gen.SliceOfN(5, gen.Float64Range(0.1, 2.0)),
		gen.Float64Range(1.0, 1.2),
	))

	properties.TestingRun(t)
}
