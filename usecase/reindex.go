package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"content-search/domain"
	"content-search/port"
	appOtel "content-search/utils/otel"
)

// ReindexUsecase drives the full-rebuild state machine. At most one run is
// in flight at a time, enforced by the state store's atomic TryStart; the
// per-page checkpoint makes a run resumable across process restarts.
//
// The destructive index wipe happens as the first page step, guarded by the
// persisted Wiped flag, so no page can be submitted to a stale index and a
// crash around the wipe is recovered correctly.
type ReindexUsecase struct {
	content  port.ContentRepository
	index    port.IndexClient
	state    port.SyncStateStore
	pageSize int
	logger   *slog.Logger
}

func NewReindexUsecase(content port.ContentRepository, index port.IndexClient, state port.SyncStateStore, pageSize int, logger *slog.Logger) *ReindexUsecase {
	if pageSize <= 0 {
		pageSize = domain.DefaultPostsPerPage
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReindexUsecase{
		content:  content,
		index:    index,
		state:    state,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Start counts the corpus and atomically claims the running flag. Returns
// domain.ErrAlreadyRunning when a run is already in flight. Start does not
// process pages; the page loop picks the run up.
func (u *ReindexUsecase) Start(ctx context.Context) (*domain.SyncState, error) {
	total, err := u.content.CountPosts(ctx)
	if err != nil {
		return nil, err
	}

	st, err := u.state.TryStart(ctx, total, uuid.NewString())
	if err != nil {
		return nil, err
	}

	u.logger.Info("reindex started", "run_id", st.RunID, "total", total)
	return st, nil
}

// Cancel flags the running reindex for cooperative cancellation. The run
// stops at the next page boundary. Returns domain.ErrNotRunning when no
// run is in flight.
func (u *ReindexUsecase) Cancel(ctx context.Context) error {
	if err := u.state.RequestCancel(ctx); err != nil {
		return err
	}
	u.logger.Info("reindex cancellation requested")
	return nil
}

// Status returns the persisted state of the current or most recent run.
func (u *ReindexUsecase) Status(ctx context.Context) (*domain.SyncState, error) {
	return u.state.Load(ctx)
}

// ProcessNextPage advances a running reindex by one page and checkpoints.
// It reports done=true when there is no more work: nothing running, run
// cancelled, completed, or failed.
//
// Page zero wipes the index before any document is submitted. A crash
// between bulk submission and checkpoint re-reads the same page on resume;
// upserts keyed by post ID make that harmless.
func (u *ReindexUsecase) ProcessNextPage(ctx context.Context) (bool, error) {
	st, err := u.state.Load(ctx)
	if err != nil {
		return true, err
	}
	if !st.Running {
		return true, nil
	}

	if st.CancelRequested {
		return true, u.finish(ctx, st, domain.SyncCancelled)
	}

	if !st.Wiped {
		if err := u.index.DeleteAll(ctx); err != nil {
			return true, u.fail(ctx, st, err)
		}
		st.Wiped = true
		if err := u.state.Checkpoint(ctx, st); err != nil {
			return true, err
		}
	}

	posts, next, err := u.content.PostsAfter(ctx, st.Cursor, u.pageSize)
	if err != nil {
		return true, u.fail(ctx, st, err)
	}

	if len(posts) > 0 {
		docs := make([]domain.SearchDocument, len(posts))
		for i, p := range posts {
			docs[i] = domain.NewSearchDocument(p)
		}
		if err := u.index.BulkUpsert(ctx, docs); err != nil {
			return true, u.fail(ctx, st, err)
		}
		appOtel.Metrics.AddIndexed(ctx, int64(len(docs)))

		st.Cursor = next
		st.CurrentPage++
		st.Processed += int64(len(posts))
		if err := u.state.Checkpoint(ctx, st); err != nil {
			return true, err
		}
		u.logger.Info("reindex page processed",
			"run_id", st.RunID, "page", st.CurrentPage, "processed", st.Processed, "total", st.Total)
	}

	if len(posts) < u.pageSize {
		return true, u.finish(ctx, st, domain.SyncCompleted)
	}
	return false, nil
}

// Run processes pages until the run finishes, is cancelled, fails, or the
// context is done.
func (u *ReindexUsecase) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		done, err := u.ProcessNextPage(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (u *ReindexUsecase) finish(ctx context.Context, st *domain.SyncState, status domain.SyncStatus) error {
	st.Running = false
	st.CancelRequested = false
	st.LastStatus = status
	st.UpdatedAt = time.Now().UTC()
	if status == domain.SyncCompleted {
		// The corpus may have shrunk since the initial count.
		st.Processed = st.Total
	}
	if err := u.state.Checkpoint(ctx, st); err != nil {
		return err
	}
	u.logger.Info("reindex finished", "run_id", st.RunID, "status", string(status))
	return nil
}

func (u *ReindexUsecase) fail(ctx context.Context, st *domain.SyncState, cause error) error {
	st.Running = false
	st.LastStatus = domain.SyncFailed
	st.LastError = cause.Error()
	st.UpdatedAt = time.Now().UTC()
	if err := u.state.Checkpoint(ctx, st); err != nil {
		u.logger.Error("failed to checkpoint failed run", "err", err)
	}
	u.logger.Error("reindex failed", "run_id", st.RunID, "err", cause)
	return cause
}
