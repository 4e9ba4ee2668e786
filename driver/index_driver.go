package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"content-search/domain"
	"content-search/esquery"
)

const indexDocType = "post"

// IndexDriver is the HTTP client for the external full-text index. It is
// the only blocking boundary of the search path; transient failures (network
// errors, 429, 5xx) are retried with exponential backoff, everything else
// is returned immediately.
type IndexDriver struct {
	baseURL  string
	index    string
	client   *http.Client
	maxTries uint
	logger   *slog.Logger
}

func NewIndexDriver(baseURL, index string, timeout time.Duration, maxTries int, logger *slog.Logger) *IndexDriver {
	if maxTries < 1 {
		maxTries = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexDriver{
		baseURL:  baseURL,
		index:    index,
		client:   &http.Client{Timeout: timeout},
		maxTries: uint(maxTries),
		logger:   logger,
	}
}

// Ping checks that the backend answers at all.
func (d *IndexDriver) Ping(ctx context.Context) error {
	_, err := d.do(ctx, http.MethodGet, "", nil, "")
	return err
}

// Search submits a query document and parses the response.
func (d *IndexDriver) Search(ctx context.Context, doc *esquery.Document) (*esquery.Response, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, &Error{Op: "Search", Err: err}
	}

	raw, err := d.do(ctx, http.MethodPost, d.index+"/"+indexDocType+"/_search", body, "application/json")
	if err != nil {
		return nil, err
	}

	var resp esquery.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Error{Op: "Search", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return &resp, nil
}

// BulkUpsert writes a batch of documents in one request, keyed by post ID
// so resubmitting a batch is idempotent.
func (d *IndexDriver) BulkUpsert(ctx context.Context, docs []domain.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		action := map[string]map[string]string{
			"index": {"_id": strconv.FormatInt(doc.PostID, 10)},
		}
		if err := enc.Encode(action); err != nil {
			return &Error{Op: "BulkUpsert", Err: err}
		}
		if err := enc.Encode(doc); err != nil {
			return &Error{Op: "BulkUpsert", Err: err}
		}
	}

	_, err := d.do(ctx, http.MethodPost, d.index+"/"+indexDocType+"/_bulk", buf.Bytes(), "application/x-ndjson")
	return err
}

// Delete removes documents by ID in one bulk request. Missing documents are
// not an error.
func (d *IndexDriver) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, id := range ids {
		action := map[string]map[string]string{
			"delete": {"_id": strconv.FormatInt(id, 10)},
		}
		if err := enc.Encode(action); err != nil {
			return &Error{Op: "Delete", Err: err}
		}
	}

	_, err := d.do(ctx, http.MethodPost, d.index+"/"+indexDocType+"/_bulk", buf.Bytes(), "application/x-ndjson")
	return err
}

// DeleteAll drops the whole index. A missing index counts as success; the
// next bulk write recreates it.
func (d *IndexDriver) DeleteAll(ctx context.Context) error {
	_, err := d.do(ctx, http.MethodDelete, d.index, nil, "")
	var de *Error
	if errors.As(err, &de) && de.Status == http.StatusNotFound {
		return nil
	}
	return err
}

func (d *IndexDriver) do(ctx context.Context, method, path string, body []byte, contentType string) ([]byte, error) {
	op := method + " /" + path
	url := d.baseURL + "/" + path

	attempt := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(&Error{Op: op, Err: err})
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		res, err := d.client.Do(req)
		if err != nil {
			return nil, &Error{Op: op, Err: err}
		}
		defer res.Body.Close()

		raw, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, &Error{Op: op, Err: err}
		}

		switch {
		case res.StatusCode >= 200 && res.StatusCode < 300:
			return raw, nil
		case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
			return nil, &Error{Op: op, Status: res.StatusCode, Err: errors.New(http.StatusText(res.StatusCode))}
		default:
			return nil, backoff.Permanent(&Error{Op: op, Status: res.StatusCode, Err: errors.New(http.StatusText(res.StatusCode))})
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	raw, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(d.maxTries),
	)
	if err != nil {
		d.logger.Warn("index request failed", "op", op, "err", err)
		return nil, err
	}
	return raw, nil
}
