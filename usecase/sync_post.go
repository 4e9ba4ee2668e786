package usecase

import (
	"context"
	"log/slog"

	"content-search/domain"
	"content-search/port"
	appOtel "content-search/utils/otel"
)

// SyncPostUsecase keeps single documents current between full rebuilds. A
// saved post is re-read and upserted; a post that is gone or no longer
// indexable is deleted from the index.
type SyncPostUsecase struct {
	content port.ContentRepository
	index   port.IndexClient
	logger  *slog.Logger
}

func NewSyncPostUsecase(content port.ContentRepository, index port.IndexClient, logger *slog.Logger) *SyncPostUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncPostUsecase{content: content, index: index, logger: logger}
}

// IndexPost upserts one post's document. A post that cannot be found (or
// whose type is excluded from search) is removed instead, so an unpublish
// and a save race to the same end state.
func (u *SyncPostUsecase) IndexPost(ctx context.Context, id int64) error {
	post, err := u.content.PostByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		u.logger.Debug("post not indexable, deleting", "post_id", id)
		if err := u.index.Delete(ctx, []int64{id}); err != nil {
			return err
		}
		appOtel.Metrics.AddDeleted(ctx, 1)
		return nil
	}

	doc := domain.NewSearchDocument(post)
	if err := u.index.BulkUpsert(ctx, []domain.SearchDocument{doc}); err != nil {
		return err
	}
	appOtel.Metrics.AddIndexed(ctx, 1)
	u.logger.Debug("post indexed", "post_id", id)
	return nil
}

// DeletePost removes one post's document. Missing documents are fine.
func (u *SyncPostUsecase) DeletePost(ctx context.Context, id int64) error {
	if err := u.index.Delete(ctx, []int64{id}); err != nil {
		return err
	}
	appOtel.Metrics.AddDeleted(ctx, 1)
	u.logger.Debug("post removed from index", "post_id", id)
	return nil
}
