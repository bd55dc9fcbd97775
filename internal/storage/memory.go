package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"sanko/internal/core"
)

// MemoryStore is an in-process SnapshotStore used by the memory backend
// and by tests. It serializes through JSON like the SQLite store so both
// round-trip snapshots identically.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
	present bool
}

var _ SnapshotStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (core.AppState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present {
		return core.AppState{}, false, nil
	}

	var state core.AppState
	if err := json.Unmarshal(s.payload, &state); err != nil {
		slog.WarnContext(ctx, "Discarding malformed snapshot", "error", err)
		return core.AppState{}, false, nil
	}
	if state.Groups == nil {
		state.Groups = []core.Group{}
	}
	return state, true, nil
}

func (s *MemoryStore) Save(ctx context.Context, state core.AppState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	s.mu.Lock()
	s.payload = payload
	s.present = true
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.payload = nil
	s.present = false
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Corrupt overwrites the stored payload with bytes that do not parse as
// an AppState. Test hook for the malformed-snapshot path.
func (s *MemoryStore) Corrupt() {
	s.mu.Lock()
	s.payload = []byte("{not json")
	s.present = true
	s.mu.Unlock()
}
