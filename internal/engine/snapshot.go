package engine

import (
	"tradedesk/internal/models"
)

// SchemaVersion is the current persisted-snapshot schema version. Version 1
// snapshots carried seeded demo orders that are discarded on migration.
const SchemaVersion = 2

// Snapshot is the full serializable engine state. It round-trips through
// JSON: restoring a snapshot reproduces an equivalent engine.
type Snapshot struct {
	Version        int                                 `json:"version"`
	Prices         map[string]float64                  `json:"prices"`
	DayOpens       map[string]float64                  `json:"day_opens"`
	ChartSymbol    string                              `json:"chart_symbol"`
	CurrentAccount string                              `json:"current_account"`
	Accounts       []models.Account                    `json:"accounts"`
	Orders         map[string][]models.Order           `json:"orders"`
	Positions      map[string][]models.Position        `json:"positions"`
	History        map[string][]models.HistoryEntry    `json:"history"`
	Balances       map[string][]models.BalanceSnapshot `json:"balances"`
	Alerts         []models.Alert                      `json:"alerts"`
}

// Snapshot captures the entire engine state as one atomic copy.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := &Snapshot{
		Version:        SchemaVersion,
		Prices:         make(map[string]float64, len(e.prices)),
		DayOpens:       make(map[string]float64, len(e.dayOpens)),
		ChartSymbol:    e.chartSymbol,
		CurrentAccount: e.currentAccount,
		Accounts:       make([]models.Account, 0, len(e.accountIDs)),
		Orders:         make(map[string][]models.Order, len(e.orders)),
		Positions:      make(map[string][]models.Position, len(e.positions)),
		History:        make(map[string][]models.HistoryEntry, len(e.history)),
		Balances:       make(map[string][]models.BalanceSnapshot, len(e.balances)),
		Alerts:         make([]models.Alert, 0, len(e.alerts)),
	}
	for sym, p := range e.prices {
		snap.Prices[sym] = p
	}
	for sym, p := range e.dayOpens {
		snap.DayOpens[sym] = p
	}
	for _, id := range e.accountIDs {
		snap.Accounts = append(snap.Accounts, *e.accounts[id])
	}
	for id, orders := range e.orders {
		list := make([]models.Order, 0, len(orders))
		for _, ord := range orders {
			list = append(list, *ord)
		}
		snap.Orders[id] = list
	}
	for id, positions := range e.positions {
		list := make([]models.Position, 0, len(positions))
		for _, pos := range positions {
			list = append(list, *pos)
		}
		snap.Positions[id] = list
	}
	for id, entries := range e.history {
		list := make([]models.HistoryEntry, len(entries))
		copy(list, entries)
		snap.History[id] = list
	}
	for id, snaps := range e.balances {
		list := make([]models.BalanceSnapshot, len(snaps))
		copy(list, snaps)
		snap.Balances[id] = list
	}
	for _, alert := range e.alerts {
		snap.Alerts = append(snap.Alerts, *alert)
	}
	return snap
}

// Restore replaces the engine state with the snapshot's contents in one
// atomic transition. A nil snapshot is a no-op.
func (e *Engine) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.prices = make(map[string]float64, len(snap.Prices))
	for sym, p := range snap.Prices {
		e.prices[sym] = p
	}
	e.dayOpens = make(map[string]float64, len(snap.DayOpens))
	for sym, p := range snap.DayOpens {
		e.dayOpens[sym] = p
	}
	e.chartSymbol = snap.ChartSymbol
	e.currentAccount = snap.CurrentAccount

	e.accountIDs = e.accountIDs[:0]
	e.accounts = make(map[string]*models.Account, len(snap.Accounts))
	for i := range snap.Accounts {
		acct := snap.Accounts[i]
		e.accounts[acct.ID] = &acct
		e.accountIDs = append(e.accountIDs, acct.ID)
	}

	e.orders = make(map[string][]*models.Order, len(snap.Orders))
	for id, orders := range snap.Orders {
		list := make([]*models.Order, 0, len(orders))
		for i := range orders {
			ord := orders[i]
			list = append(list, &ord)
		}
		e.orders[id] = list
	}
	e.positions = make(map[string][]*models.Position, len(snap.Positions))
	for id, positions := range snap.Positions {
		list := make([]*models.Position, 0, len(positions))
		for i := range positions {
			pos := positions[i]
			list = append(list, &pos)
		}
		e.positions[id] = list
	}
	e.history = make(map[string][]models.HistoryEntry, len(snap.History))
	for id, entries := range snap.History {
		list := make([]models.HistoryEntry, len(entries))
		copy(list, entries)
		e.history[id] = list
	}
	e.balances = make(map[string][]models.BalanceSnapshot, len(snap.Balances))
	for id, snaps := range snap.Balances {
		list := make([]models.BalanceSnapshot, len(snaps))
		copy(list, snaps)
		e.balances[id] = list
	}
	e.alerts = e.alerts[:0]
	for i := range snap.Alerts {
		alert := snap.Alerts[i]
		e.alerts = append(e.alerts, &alert)
	}

	if e.currentAccount == "" && len(e.accountIDs) > 0 {
		e.currentAccount = e.accountIDs[0]
	}
}
