package gateway

import (
	"context"
	"errors"

	"content-search/domain"
	"content-search/driver"
)

// SyncStateDriver is the raw persistence for the reindex state record.
type SyncStateDriver interface {
	Load(ctx context.Context) (*driver.SyncStateRecord, error)
	TryStart(ctx context.Context, total int64, runID string) (*driver.SyncStateRecord, error)
	RequestCancel(ctx context.Context) error
	Checkpoint(ctx context.Context, rec *driver.SyncStateRecord) error
}

// SyncStateGateway adapts persisted records to domain state and maps the
// driver's transition failures onto the domain sentinels.
type SyncStateGateway struct {
	driver SyncStateDriver
}

func NewSyncStateGateway(d SyncStateDriver) *SyncStateGateway {
	return &SyncStateGateway{driver: d}
}

func (g *SyncStateGateway) Load(ctx context.Context) (*domain.SyncState, error) {
	rec, err := g.driver.Load(ctx)
	if err != nil {
		return nil, &domain.SyncStoreError{Op: "Load", Err: err}
	}
	return convertState(rec), nil
}

func (g *SyncStateGateway) TryStart(ctx context.Context, total int64, runID string) (*domain.SyncState, error) {
	rec, err := g.driver.TryStart(ctx, total, runID)
	if errors.Is(err, driver.ErrStateRunning) {
		return nil, domain.ErrAlreadyRunning
	}
	if err != nil {
		return nil, &domain.SyncStoreError{Op: "TryStart", Err: err}
	}
	return convertState(rec), nil
}

func (g *SyncStateGateway) RequestCancel(ctx context.Context) error {
	err := g.driver.RequestCancel(ctx)
	if errors.Is(err, driver.ErrStateIdle) {
		return domain.ErrNotRunning
	}
	if err != nil {
		return &domain.SyncStoreError{Op: "RequestCancel", Err: err}
	}
	return nil
}

func (g *SyncStateGateway) Checkpoint(ctx context.Context, st *domain.SyncState) error {
	rec := &driver.SyncStateRecord{
		Running:         st.Running,
		Processed:       st.Processed,
		Total:           st.Total,
		CurrentPage:     st.CurrentPage,
		Cursor:          st.Cursor,
		CancelRequested: st.CancelRequested,
		Wiped:           st.Wiped,
		RunID:           st.RunID,
		LastStatus:      string(st.LastStatus),
		LastError:       st.LastError,
		StartedAt:       st.StartedAt,
		UpdatedAt:       st.UpdatedAt,
	}
	if err := g.driver.Checkpoint(ctx, rec); err != nil {
		return &domain.SyncStoreError{Op: "Checkpoint", Err: err}
	}
	return nil
}

func convertState(rec *driver.SyncStateRecord) *domain.SyncState {
	return &domain.SyncState{
		Running:         rec.Running,
		Processed:       rec.Processed,
		Total:           rec.Total,
		CurrentPage:     rec.CurrentPage,
		Cursor:          rec.Cursor,
		CancelRequested: rec.CancelRequested,
		Wiped:           rec.Wiped,
		RunID:           rec.RunID,
		LastStatus:      domain.SyncStatus(rec.LastStatus),
		LastError:       rec.LastError,
		StartedAt:       rec.StartedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}
