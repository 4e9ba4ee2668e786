package port

import (
	"context"

	"content-search/domain"
)

// SyncStateStore persists the process-wide reindex state. Implementations
// must make TryStart and RequestCancel atomic with respect to concurrent
// callers: of two simultaneous starts exactly one proceeds.
type SyncStateStore interface {
	// Load returns the persisted state, or an idle zero state when none
	// was ever written.
	Load(ctx context.Context) (*domain.SyncState, error)
	// TryStart atomically claims the running flag and resets counters.
	// Returns domain.ErrAlreadyRunning when a run is in flight.
	TryStart(ctx context.Context, total int64, runID string) (*domain.SyncState, error)
	// RequestCancel sets the cancellation flag on a running state.
	// Returns domain.ErrNotRunning when nothing is running.
	RequestCancel(ctx context.Context) error
	// Checkpoint persists the full state record.
	Checkpoint(ctx context.Context, st *domain.SyncState) error
}
