package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"sanko/internal/core"
)

// SQLiteStore keeps the snapshot in a single-row keyed table inside a
// local SQLite file. The pure Go driver keeps the binary CGO-free.
type SQLiteStore struct {
	db   *sql.DB
	slot string
}

var _ SnapshotStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at dbPath and
// runs schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, slot: SnapshotSlot}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads the snapshot slot. A missing row or an unparseable payload
// both report ok=false; the latter is logged and discarded so a corrupt
// store behaves like a first run.
func (s *SQLiteStore) Load(ctx context.Context) (core.AppState, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM snapshots WHERE slot = ?", s.slot,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AppState{}, false, nil
	}
	if err != nil {
		return core.AppState{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var state core.AppState
	if err := json.Unmarshal(payload, &state); err != nil {
		slog.WarnContext(ctx, "Discarding malformed snapshot",
			"slot", s.slot,
			"bytes", len(payload),
			"error", err)
		return core.AppState{}, false, nil
	}
	if state.Groups == nil {
		state.Groups = []core.Group{}
	}

	slog.DebugContext(ctx, "Snapshot loaded", "slot", s.slot, "groups", len(state.Groups))
	return state, true, nil
}

// Save serializes state and overwrites the slot.
func (s *SQLiteStore) Save(ctx context.Context, state core.AppState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (slot, payload, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(slot) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		s.slot, payload)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved", "slot", s.slot, "bytes", len(payload))
	return nil
}

// Clear removes the snapshot slot.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE slot = ?", s.slot); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Snapshot cleared", "slot", s.slot)
	return nil
}
