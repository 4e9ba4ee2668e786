package gateway

import (
	"context"
	"errors"
	"net/http"

	"content-search/domain"
	"content-search/driver"
	"content-search/esquery"
)

// IndexDriver is the raw HTTP client to the full-text index backend.
type IndexDriver interface {
	Search(ctx context.Context, doc *esquery.Document) (*esquery.Response, error)
	BulkUpsert(ctx context.Context, docs []domain.SearchDocument) error
	Delete(ctx context.Context, ids []int64) error
	DeleteAll(ctx context.Context) error
}

// IndexGateway translates driver-level failures into typed domain errors
// so usecases can branch on kind without knowing HTTP.
type IndexGateway struct {
	driver IndexDriver
}

func NewIndexGateway(d IndexDriver) *IndexGateway {
	return &IndexGateway{driver: d}
}

func (g *IndexGateway) Query(ctx context.Context, doc *esquery.Document) (*esquery.Response, error) {
	resp, err := g.driver.Search(ctx, doc)
	if err != nil {
		return nil, indexError("Query", err)
	}
	return resp, nil
}

func (g *IndexGateway) BulkUpsert(ctx context.Context, docs []domain.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}
	if err := g.driver.BulkUpsert(ctx, docs); err != nil {
		return indexError("BulkUpsert", err)
	}
	return nil
}

func (g *IndexGateway) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := g.driver.Delete(ctx, ids); err != nil {
		return indexError("Delete", err)
	}
	return nil
}

func (g *IndexGateway) DeleteAll(ctx context.Context) error {
	if err := g.driver.DeleteAll(ctx); err != nil {
		return indexError("DeleteAll", err)
	}
	return nil
}

func indexError(op string, err error) *domain.IndexError {
	kind := domain.IndexUnreachable
	var de *driver.Error
	switch {
	case errors.Is(err, driver.ErrMalformedResponse):
		kind = domain.IndexMalformed
	case errors.As(err, &de) && de.Status == http.StatusNotFound:
		kind = domain.IndexNotFound
	}
	return &domain.IndexError{Kind: kind, Op: op, Err: err}
}
