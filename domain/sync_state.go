package domain

import "time"

// SyncStatus is the lifecycle state of the reindex state machine.
type SyncStatus string

const (
	SyncIdle      SyncStatus = "idle"
	SyncRunning   SyncStatus = "running"
	SyncCompleted SyncStatus = "completed"
	SyncCancelled SyncStatus = "cancelled"
	SyncFailed    SyncStatus = "failed"
)

// SyncState is the process-wide record of the (at most one) reindex run.
// It is persisted after every page so a restarted process can observe an
// in-flight run and resume from the checkpointed cursor.
//
// Cursor is the last post ID of the previous page; a crash between bulk
// submission and checkpoint re-processes that page, which is safe because
// upserts are keyed by stable post ID. Wiped records that the destructive
// full-rebuild wipe completed; no page may be submitted before it.
type SyncState struct {
	Running         bool
	Processed       int64
	Total           int64
	CurrentPage     int64
	Cursor          int64
	CancelRequested bool
	Wiped           bool
	RunID           string
	LastStatus      SyncStatus
	LastError       string
	StartedAt       time.Time
	UpdatedAt       time.Time
}

// Status returns the lifecycle state implied by the record.
func (s *SyncState) Status() SyncStatus {
	if s.Running {
		return SyncRunning
	}
	if s.LastStatus == "" {
		return SyncIdle
	}
	return s.LastStatus
}
