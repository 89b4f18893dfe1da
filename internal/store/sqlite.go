package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tradedesk/internal/engine"
	"tradedesk/internal/models"
)

// SQLiteStore implements SnapshotStore using SQLite as a key-value document
// store: the whole engine state lives in one JSON row keyed by StoreName.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed snapshot store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One versioned JSON document per store name
	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		data TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Append-only mirror of closed positions
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		volume REAL NOT NULL,
		open_time DATETIME NOT NULL,
		close_time DATETIME NOT NULL,
		open_price REAL NOT NULL,
		close_price REAL NOT NULL,
		pnl REAL NOT NULL,
		commission REAL NOT NULL,
		swap REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_account ON history(account_id, close_time);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save persists the snapshot under the fixed store name, stamping the
// current schema version.
func (s *SQLiteStore) Save(ctx context.Context, snap *engine.Snapshot) error {
	if snap == nil {
		return nil
	}
	snap.Version = engine.SchemaVersion
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, version, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		StoreName, snap.Version, string(data))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load reads the persisted snapshot, applying schema migrations. A missing
// row or an unparseable document yields (nil, nil): callers fall back to
// seeded defaults rather than failing startup.
func (s *SQLiteStore) Load(ctx context.Context) (*engine.Snapshot, error) {
	var version int
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT version, data FROM snapshots WHERE name = ?`, StoreName).
		Scan(&version, &data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		// Corrupt persisted state falls back to defaults.
		return nil, nil
	}
	if snap.Version == 0 {
		snap.Version = version
	}
	migrateSnapshot(&snap)
	return &snap, nil
}

// migrateSnapshot upgrades older persisted shapes in place.
func migrateSnapshot(snap *engine.Snapshot) {
	if snap.Version >= engine.SchemaVersion {
		return
	}
	if snap.Version <= 1 {
		// Version 1 documents carried seeded demo orders; drop anything
		// still pending with a legacy non-ULID numeric id.
		for accountID, orders := range snap.Orders {
			kept := orders[:0]
			for _, ord := range orders {
				if isLegacySeedOrderID(ord.ID) {
					continue
				}
				kept = append(kept, ord)
			}
			snap.Orders[accountID] = kept
		}
	}
	snap.Version = engine.SchemaVersion
}

// isLegacySeedOrderID reports whether an order id comes from the version 1
// seed data (short, purely numeric ids).
func isLegacySeedOrderID(id string) bool {
	if len(id) == 0 || len(id) > 13 {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// AppendHistory mirrors closed positions into the history table. Existing
// ids are ignored; history rows are never updated or deleted.
func (s *SQLiteStore) AppendHistory(ctx context.Context, entries []models.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO history
		(id, account_id, symbol, side, volume, open_time, close_time, open_price, close_price, pnl, commission, swap)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.AccountID, e.Symbol, string(e.Side), e.Volume,
			e.OpenTime, e.CloseTime, e.OpenPrice, e.ClosePrice,
			e.PnL, e.Commission, e.Swap); err != nil {
			return fmt.Errorf("failed to insert history entry: %w", err)
		}
	}
	return tx.Commit()
}

// GetHistory returns closed positions for an account, most recent first.
func (s *SQLiteStore) GetHistory(ctx context.Context, accountID string, limit int) ([]models.HistoryEntry, error) {
	query := `
		SELECT id, account_id, symbol, side, volume, open_time, close_time,
		       open_price, close_price, pnl, commission, swap
		FROM history WHERE account_id = ?
		ORDER BY close_time DESC`
	args := []interface{}{accountID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var side string
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Symbol, &side, &e.Volume,
			&e.OpenTime, &e.CloseTime, &e.OpenPrice, &e.ClosePrice,
			&e.PnL, &e.Commission, &e.Swap); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Side = models.Side(side)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements SnapshotStore
var _ SnapshotStore = (*SQLiteStore)(nil)
