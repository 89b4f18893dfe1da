package engine

import (
	"time"

	dErrors "tradedesk/internal/errors"
	"tradedesk/internal/models"
)

// ClosePosition closes a single open position at its last marked price:
// balance is credited with realized PnL minus commission, the held margin is
// released, and an immutable history entry is appended.
func (e *Engine) ClosePosition(accountID, positionID string) (*models.HistoryEntry, error) {
	e.mu.Lock()
	id := e.resolveLocked(accountID)

	idx := -1
	for i, pos := range e.positions[id] {
		if pos.ID == positionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return nil, dErrors.Wrapf(dErrors.ErrPositionNotFound, "position %s", positionID)
	}

	entry := e.closeLocked(id, idx, time.Now().UTC())
	acct := e.accounts[id]
	e.recomputeLocked(acct)
	e.mu.Unlock()

	e.emit([]Event{{
		Kind: EventPositionClosed, Time: entry.CloseTime, AccountID: id,
		Symbol: entry.Symbol, Price: entry.ClosePrice, Entry: &entry,
	}})
	return &entry, nil
}

// closeLocked converts the position at idx into a history entry and applies
// the balance and margin bookkeeping. Caller holds the lock and recomputes
// derived balances afterwards.
func (e *Engine) closeLocked(accountID string, idx int, at time.Time) models.HistoryEntry {
	pos := e.positions[accountID][idx]
	acct := e.accounts[accountID]

	closePrice := pos.CurrentPrice
	if closePrice == 0 {
		if p, ok := e.prices[pos.Symbol]; ok {
			closePrice = p
		} else {
			closePrice = pos.OpenPrice
		}
	}

	acct.Balance += pos.PnL - pos.Commission
	acct.MarginUsed -= pos.Margin()

	entry := models.HistoryEntry{
		ID:         pos.ID,
		AccountID:  accountID,
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Volume:     pos.Volume,
		OpenTime:   pos.OpenTime,
		CloseTime:  at,
		OpenPrice:  pos.OpenPrice,
		ClosePrice: closePrice,
		PnL:        pos.PnL,
		Commission: pos.Commission,
		Swap:       pos.Swap,
	}
	e.history[accountID] = append(e.history[accountID], entry)
	e.positions[accountID] = append(e.positions[accountID][:idx], e.positions[accountID][idx+1:]...)
	return entry
}

// PositionPredicate selects positions for a bulk close.
type PositionPredicate func(models.Position) bool

// Bulk close predicates.
var (
	AnyPosition        PositionPredicate = func(models.Position) bool { return true }
	ProfitablePosition PositionPredicate = func(p models.Position) bool { return p.PnL > 0 }
	LosingPosition     PositionPredicate = func(p models.Position) bool { return p.PnL < 0 }
)

// ClosePositionsWhere closes every open position matching the predicate in
// one state transition. The matching set is computed up front; a predicate
// matching nothing changes no state and appends nothing to history.
func (e *Engine) ClosePositionsWhere(accountID string, pred PositionPredicate) []models.HistoryEntry {
	now := time.Now().UTC()

	e.mu.Lock()
	id := e.resolveLocked(accountID)

	var matchIDs []string
	for _, pos := range e.positions[id] {
		if pred(*pos) {
			matchIDs = append(matchIDs, pos.ID)
		}
	}
	if len(matchIDs) == 0 {
		e.mu.Unlock()
		return nil
	}

	entries := make([]models.HistoryEntry, 0, len(matchIDs))
	for _, posID := range matchIDs {
		for i, pos := range e.positions[id] {
			if pos.ID == posID {
				entries = append(entries, e.closeLocked(id, i, now))
				break
			}
		}
	}
	e.recomputeLocked(e.accounts[id])
	e.mu.Unlock()

	events := make([]Event, 0, len(entries))
	for i := range entries {
		entry := entries[i]
		events = append(events, Event{
			Kind: EventPositionClosed, Time: now, AccountID: id,
			Symbol: entry.Symbol, Price: entry.ClosePrice, Entry: &entry,
		})
	}
	e.emit(events)
	return entries
}

// CloseAll closes every open position for the account.
func (e *Engine) CloseAll(accountID string) []models.HistoryEntry {
	return e.ClosePositionsWhere(accountID, AnyPosition)
}

// CloseProfitable closes every open position with positive PnL.
func (e *Engine) CloseProfitable(accountID string) []models.HistoryEntry {
	return e.ClosePositionsWhere(accountID, ProfitablePosition)
}

// CloseLosing closes every open position with negative PnL.
func (e *Engine) CloseLosing(accountID string) []models.HistoryEntry {
	return e.ClosePositionsWhere(accountID, LosingPosition)
}

// Positions returns copies of the account's open positions.
func (e *Engine) Positions(accountID string) []models.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	positions := e.positions[e.resolveLocked(accountID)]
	out := make([]models.Position, 0, len(positions))
	for _, pos := range positions {
		out = append(out, *pos)
	}
	return out
}

// History returns copies of the account's closed-position records.
func (e *Engine) History(accountID string) []models.HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.history[e.resolveLocked(accountID)]
	out := make([]models.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}
