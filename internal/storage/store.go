// Package storage persists the application state as a single serialized
// snapshot in a named slot. Absent and malformed snapshots are both
// reported as "no prior state" so first runs and corrupted stores take
// the same seeding path.
package storage

import (
	"context"

	"sanko/internal/core"
)

// SnapshotSlot is the slot name the app state is stored under.
const SnapshotSlot = "sanko-app-state"

// SnapshotStore loads and stores the full application state snapshot.
type SnapshotStore interface {
	// Load returns the persisted snapshot. ok is false when no snapshot
	// exists or the stored payload does not parse as an AppState; a
	// malformed payload is discarded (and logged), never surfaced as an
	// error. The error return is reserved for I/O failures.
	Load(ctx context.Context) (state core.AppState, ok bool, err error)

	// Save overwrites the persisted snapshot with state.
	Save(ctx context.Context, state core.AppState) error

	// Clear removes the persisted snapshot, if any.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
