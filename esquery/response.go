package esquery

import (
	"encoding/json"
	"errors"
	"strconv"

	"content-search/domain"
)

// Response is the parsed index response for a query document.
type Response struct {
	Hits   HitsEnvelope           `json:"hits"`
	Facets map[string]FacetResult `json:"facets"`
}

// HitsEnvelope carries the ordered hits and the authoritative total count.
type HitsEnvelope struct {
	Total int64 `json:"total"`
	Hits  []Hit `json:"hits"`
}

// Hit is one search hit. Fields is the projected-fields shortcut; Source is
// the full stored document. Either may be absent depending on the query.
type Hit struct {
	ID     string     `json:"_id"`
	Score  *float64   `json:"_score"`
	Fields *HitFields `json:"fields,omitempty"`
	Source *HitSource `json:"_source,omitempty"`
}

// HitFields holds the projected fields of a hit.
type HitFields struct {
	PostID FlexID `json:"post_id"`
}

// HitSource is the subset of the stored document the translator reads.
type HitSource struct {
	PostID int64 `json:"post_id"`
}

// FlexID decodes the backend's projected field values, which may arrive as
// a bare number, a numeric string, or a single-element array of either.
type FlexID struct {
	Value int64
	OK    bool
}

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if arr, ok := raw.([]any); ok {
		if len(arr) == 0 {
			return nil
		}
		raw = arr[0]
	}
	switch v := raw.(type) {
	case float64:
		f.Value, f.OK = int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		f.Value, f.OK = n, true
	}
	return nil
}

// FacetResult is one raw aggregation result. Terms aggregations report
// under "terms", date histograms under "entries".
type FacetResult struct {
	Terms   []Bucket `json:"terms,omitempty"`
	Entries []Bucket `json:"entries,omitempty"`
}

// Bucket is one raw aggregation bucket.
type Bucket struct {
	Term  TermValue `json:"term,omitempty"`
	Time  int64     `json:"time,omitempty"`
	Count int64     `json:"count"`
}

// TermValue is a terms-aggregation key: a numeric term ID for taxonomy
// facets, a name for post-type facets.
type TermValue struct {
	ID   int64
	Name string
}

func (t *TermValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		t.ID = int64(v)
	case string:
		t.Name = v
	}
	return nil
}

func (t TermValue) MarshalJSON() ([]byte, error) {
	if t.Name != "" {
		return json.Marshal(t.Name)
	}
	return json.Marshal(t.ID)
}

// ExtractResult translates a parsed response into ordered post IDs, the
// authoritative total and the raw facet buckets.
//
// A hit carrying neither the projected post_id field nor a source post_id
// means the response shape is incompatible with this translator; that is a
// hard error, not a partial result.
func ExtractResult(resp *Response) (*domain.SearchResult, error) {
	if resp == nil {
		return nil, &domain.IndexError{
			Kind: domain.IndexMalformed,
			Op:   "esquery.ExtractResult",
			Err:  errors.New("nil response"),
		}
	}

	ids := make([]int64, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		switch {
		case hit.Fields != nil && hit.Fields.PostID.OK:
			ids = append(ids, hit.Fields.PostID.Value)
		case hit.Source != nil && hit.Source.PostID != 0:
			ids = append(ids, hit.Source.PostID)
		default:
			return nil, &domain.IndexError{
				Kind: domain.IndexMalformed,
				Op:   "esquery.ExtractResult",
				Err:  errors.New("hit " + hit.ID + " has no post_id in fields or source"),
			}
		}
	}

	result := &domain.SearchResult{
		IDs:   ids,
		Total: resp.Hits.Total,
	}

	if len(resp.Facets) > 0 {
		result.Facets = make(map[string][]domain.FacetBucket, len(resp.Facets))
		for label, facet := range resp.Facets {
			raw := facet.Terms
			if len(raw) == 0 {
				raw = facet.Entries
			}
			buckets := make([]domain.FacetBucket, 0, len(raw))
			for _, b := range raw {
				buckets = append(buckets, domain.FacetBucket{
					TermID:   b.Term.ID,
					TermName: b.Term.Name,
					Time:     b.Time,
					Count:    b.Count,
				})
			}
			result.Facets[label] = buckets
		}
	}

	return result, nil
}
