// Package store provides durable persistence for engine snapshots.
package store

import (
	"context"

	"tradedesk/internal/engine"
	"tradedesk/internal/models"
)

// StoreName is the fixed key the engine state is persisted under.
const StoreName = "tradedesk"

// SnapshotStore persists the entire engine state as one versioned JSON
// document under a fixed name, with an append-only mirror of closed trades.
//
// Loads are forgiving: a missing or unparseable document yields (nil, nil)
// and callers fall back to seeded defaults.
type SnapshotStore interface {
	Save(ctx context.Context, snap *engine.Snapshot) error
	Load(ctx context.Context) (*engine.Snapshot, error)

	// AppendHistory mirrors closed positions into a queryable table.
	AppendHistory(ctx context.Context, entries []models.HistoryEntry) error
	GetHistory(ctx context.Context, accountID string, limit int) ([]models.HistoryEntry, error)

	Close() error
}
