// Package services holds the background services that sit between the
// state engine and its collaborators.
package services

import (
	"context"
	"time"

	"sanko/internal/core"
	"sanko/internal/log"
	"sanko/internal/storage"
)

const saveTimeout = 5 * time.Second

// Persister subscribes to state engine changes and writes each snapshot
// to the store in the background. Writes are fire-and-forget: callers
// are never blocked and a failed write is logged and dropped, leaving
// the in-memory state as the source of truth for the session.
//
// Notifications are coalesced latest-wins: when mutations arrive faster
// than saves complete, intermediate snapshots are skipped and only the
// newest one is written.
type Persister struct {
	store   storage.SnapshotStore
	pending chan core.AppState
	logger  *log.Logger
}

// NewPersister creates a persister writing to store.
func NewPersister(store storage.SnapshotStore, logger *log.Logger) *Persister {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Persister{
		store:   store,
		pending: make(chan core.AppState, 1),
		logger:  logger.WithComponent(log.ComponentPersister),
	}
}

// Notify hands a snapshot to the persister without blocking. A snapshot
// already waiting to be written is replaced.
func (p *Persister) Notify(state core.AppState) {
	for {
		select {
		case p.pending <- state:
			return
		default:
			select {
			case <-p.pending:
			default:
			}
		}
	}
}

// Run writes pending snapshots until ctx is cancelled, then flushes any
// snapshot still waiting. It always returns nil: persistence failures
// are non-fatal for the process.
func (p *Persister) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			select {
			case state := <-p.pending:
				p.save(state)
			default:
			}
			p.logger.Info("Persister stopped", log.FieldOperation, "shutdown")
			return nil
		case state := <-p.pending:
			p.save(state)
		}
	}
}

func (p *Persister) save(state core.AppState) {
	// Detached context: a shutdown in progress must not cancel the
	// final write mid-flight.
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := p.store.Save(ctx, state); err != nil {
		p.logger.Error("Snapshot save failed",
			log.FieldError, err,
			"groups", len(state.Groups))
		return
	}
	p.logger.Debug("Snapshot persisted", "groups", len(state.Groups))
}
