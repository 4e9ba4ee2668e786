// Package esquery translates generic content-search requests into the index
// backend's JSON query documents and extracts results from its responses.
// Every function is pure with respect to its inputs.
package esquery

// Document is the wire-shape query sent to the index. Built fresh per
// request and never mutated after construction.
type Document struct {
	Size   int                    `json:"size"`
	From   *int                   `json:"from,omitempty"`
	Filter Filter                 `json:"filter"`
	Query  *QueryClause           `json:"query,omitempty"`
	Sort   []SortClause           `json:"sort,omitempty"`
	Facets map[string]FacetClause `json:"facets,omitempty"`
	Fields []string               `json:"fields,omitempty"`
}

// Filter is one node of the boolean filter tree. Exactly one member is set.
type Filter struct {
	And      []Filter               `json:"and,omitempty"`
	Terms    map[string][]string    `json:"terms,omitempty"`
	Term     map[string]string      `json:"term,omitempty"`
	Range    map[string]RangeBounds `json:"range,omitempty"`
	MatchAll *MatchAll              `json:"match_all,omitempty"`
}

// MatchAll marshals to the index's empty match-everything clause. The
// backend requires an explicit filter clause, so an empty filter list
// degrades to this rather than being omitted.
type MatchAll struct{}

// RangeBounds carries inclusive/exclusive range bounds verbatim.
type RangeBounds struct {
	GT  string `json:"gt,omitempty"`
	GTE string `json:"gte,omitempty"`
	LT  string `json:"lt,omitempty"`
	LTE string `json:"lte,omitempty"`
}

// QueryClause is the optional full-text part of the document.
type QueryClause struct {
	MultiMatch *MultiMatch `json:"multi_match,omitempty"`
}

// MultiMatch matches the query across several fields. Operator "and" makes
// every term mandatory.
type MultiMatch struct {
	Query    string   `json:"query"`
	Fields   []string `json:"fields"`
	Operator string   `json:"operator"`
}

// SortClause maps one index field to its order.
type SortClause map[string]SortOrder

// SortOrder is the direction of one sort key.
type SortOrder struct {
	Order string `json:"order"`
}

// FacetClause is one requested aggregation. Exactly one member is set.
type FacetClause struct {
	Terms         *TermsFacet         `json:"terms,omitempty"`
	DateHistogram *DateHistogramFacet `json:"date_histogram,omitempty"`
}

// TermsFacet aggregates on a field's distinct values.
type TermsFacet struct {
	Field string `json:"field"`
	Size  int    `json:"size"`
}

// DateHistogramFacet aggregates into calendar interval buckets.
type DateHistogramFacet struct {
	Interval string `json:"interval"`
	Field    string `json:"field"`
	Size     int    `json:"size"`
}
