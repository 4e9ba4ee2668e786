package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all OTel metric instruments for content-search. Nil until
// InitMetrics runs; the recording methods are nil-safe so call sites need no
// guard when telemetry is disabled.
var Metrics *ContentSearchMetrics

// ContentSearchMetrics contains all metric instruments.
type ContentSearchMetrics struct {
	IndexedTotal   metric.Int64Counter
	DeletedTotal   metric.Int64Counter
	ErrorsTotal    metric.Int64Counter
	DegradedTotal  metric.Int64Counter
	PageDuration   metric.Float64Histogram
	SearchDuration metric.Float64Histogram
}

// InitMetrics initializes all metric instruments.
func InitMetrics() error {
	meter := otel.Meter("content-search")

	indexedTotal, err := meter.Int64Counter("content_search_indexed_total",
		metric.WithDescription("Total number of posts indexed"),
	)
	if err != nil {
		return err
	}

	deletedTotal, err := meter.Int64Counter("content_search_deleted_total",
		metric.WithDescription("Total number of posts deleted from index"),
	)
	if err != nil {
		return err
	}

	errorsTotal, err := meter.Int64Counter("content_search_errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return err
	}

	degradedTotal, err := meter.Int64Counter("content_search_degraded_total",
		metric.WithDescription("Total number of searches degraded to empty results"),
	)
	if err != nil {
		return err
	}

	pageDuration, err := meter.Float64Histogram("content_search_page_duration_seconds",
		metric.WithDescription("Reindex page processing duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	searchDuration, err := meter.Float64Histogram("content_search_search_duration_seconds",
		metric.WithDescription("Search request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	Metrics = &ContentSearchMetrics{
		IndexedTotal:   indexedTotal,
		DeletedTotal:   deletedTotal,
		ErrorsTotal:    errorsTotal,
		DegradedTotal:  degradedTotal,
		PageDuration:   pageDuration,
		SearchDuration: searchDuration,
	}

	return nil
}

// AddIndexed counts documents written to the index.
func (m *ContentSearchMetrics) AddIndexed(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.IndexedTotal.Add(ctx, n)
}

// AddDeleted counts documents removed from the index.
func (m *ContentSearchMetrics) AddDeleted(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.DeletedTotal.Add(ctx, n)
}

// AddError counts an error by operation.
func (m *ContentSearchMetrics) AddError(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// AddDegraded counts a search that degraded to an empty result.
func (m *ContentSearchMetrics) AddDegraded(ctx context.Context) {
	if m == nil {
		return
	}
	m.DegradedTotal.Add(ctx, 1)
}

// RecordPage records the duration of one processed reindex page.
func (m *ContentSearchMetrics) RecordPage(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.PageDuration.Record(ctx, d.Seconds())
}

// RecordSearch records the duration of one search request.
func (m *ContentSearchMetrics) RecordSearch(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.SearchDuration.Record(ctx, d.Seconds())
}
