package port

import (
	"context"

	"content-search/domain"
	"content-search/esquery"
)

// IndexClient is the boundary to the external full-text index. Failures
// surface as *domain.IndexError with a typed kind; retryable transport
// failures are retried below this boundary, so an error here is terminal
// for the call.
type IndexClient interface {
	Query(ctx context.Context, doc *esquery.Document) (*esquery.Response, error)
	BulkUpsert(ctx context.Context, docs []domain.SearchDocument) error
	Delete(ctx context.Context, ids []int64) error
	DeleteAll(ctx context.Context) error
}
