package engine

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradedesk/internal/models"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	eng, _ := newTestEngine(t, 10000)
	eng.SetChartSymbol("FX:EURUSD")

	_, err := eng.PlaceOrder("1", OrderSpec{
		Symbol: "EURUSD",
		Side:   models.SideBuy,
		Kind:   models.OrderKindLimit,
		Price:  1.0800,
		Volume: 1.0,
	})
	require.NoError(t, err)

	pos, err := eng.PlaceMarket("1", models.SideBuy, 0.5, "GBPJPY")
	require.NoError(t, err)
	require.NoError(t, eng.UpdatePrice("GBPJPY", 192.0))
	_, err = eng.ClosePosition("1", pos.ID)
	require.NoError(t, err)

	eng.AddAlert("EURUSD", 1.1000)
	eng.Reconcile()

	snap := eng.Snapshot()
	assert.Equal(t, SchemaVersion, snap.Version)

	// Through JSON, as the store does it.
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored := New(zerolog.Nop())
	restored.Restore(&decoded)

	assert.Equal(t, eng.CurrentAccount(), restored.CurrentAccount())
	assert.Equal(t, eng.ChartSymbol(), restored.ChartSymbol())
	assert.Equal(t, eng.Prices(), restored.Prices())
	assert.Equal(t, eng.Accounts(), restored.Accounts())
	assert.Equal(t, eng.Orders("1"), restored.Orders("1"))
	assert.Equal(t, eng.Positions("1"), restored.Positions("1"))
	assert.Equal(t, eng.History("1"), restored.History("1"))
	assert.Equal(t, eng.BalanceHistory("1"), restored.BalanceHistory("1"))
	assert.Equal(t, eng.Alerts(), restored.Alerts())
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	eng, _ := newTestEngine(t, 10000)
	_, err := eng.PlaceMarket("1", models.SideBuy, 1.0, "EURUSD")
	require.NoError(t, err)

	snap := eng.Snapshot()
	balanceBefore := snap.Accounts[0].Balance

	// Mutating the engine must not leak into an earlier snapshot.
	require.NoError(t, eng.UpdatePrice("EURUSD", 1.0900))
	require.Len(t, eng.CloseAll("1"), 1)

	assert.Equal(t, balanceBefore, snap.Accounts[0].Balance)
	assert.Len(t, snap.Positions["1"], 1)
}

func TestRestoreDefaultsCurrentAccount(t *testing.T) {
	eng, _ := newTestEngine(t, 10000)
	snap := eng.Snapshot()
	snap.CurrentAccount = ""

	restored := New(zerolog.Nop())
	restored.Restore(snap)
	assert.Equal(t, "1", restored.CurrentAccount())
}

func TestRestoredEngineKeepsTrading(t *testing.T) {
	eng, _ := newTestEngine(t, 10000)
	_, err := eng.PlaceOrder("1", OrderSpec{
		Symbol: "EURUSD",
		Side:   models.SideBuy,
		Kind:   models.OrderKindLimit,
		Price:  1.0800,
		Volume: 1.0,
	})
	require.NoError(t, err)

	restored := New(zerolog.Nop())
	restored.Restore(eng.Snapshot())

	// The restored pending order still fills.
	require.NoError(t, restored.UpdatePrice("EURUSD", 1.0790))
	assert.Empty(t, restored.Orders("1"))
	assert.Len(t, restored.Positions("1"), 1)
}
