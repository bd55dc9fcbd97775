// Package backend selects and builds the snapshot store configured for
// the process.
package backend

import (
	"fmt"

	"sanko/internal/config"
	"sanko/internal/log"
	"sanko/internal/storage"
)

// Type represents the kind of snapshot store backing the app.
type Type string

const (
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Result contains the opened store and its cleanup function.
type Result struct {
	Store   storage.SnapshotStore
	Cleanup func() error
}

// Open builds the snapshot store named by the app config.
func Open(cfg *config.Config, logger *log.Logger) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app config is nil")
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentStorage)

	backendType := Type(cfg.DataBackend)
	switch backendType {
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized SQLite backend",
			log.FieldBackend, backendType.String(),
			"db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case MemoryBackend:
		store := storage.NewMemoryStore()
		logger.Info("Initialized memory backend", log.FieldBackend, backendType.String())
		return &Result{Store: store, Cleanup: store.Close}, nil

	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}
}
