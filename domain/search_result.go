package domain

// SearchResult is the outcome of one index query: the ordered post IDs of
// the page, the authoritative total match count, and the raw facet buckets
// keyed by the caller's facet labels. It is produced by one search call and
// consumed immediately; nothing caches it.
type SearchResult struct {
	IDs    []int64
	Total  int64
	Facets map[string][]FacetBucket
}
