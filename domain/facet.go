package domain

// HistogramInterval is the granularity of a date-histogram facet.
type HistogramInterval string

const (
	IntervalYear  HistogramInterval = "year"
	IntervalMonth HistogramInterval = "month"
	IntervalDay   HistogramInterval = "day"
)

// Valid reports whether the interval is one of the supported granularities.
// Unrecognized intervals are dropped silently wherever they appear so that
// historical facet configuration stays forward-compatible.
func (i HistogramInterval) Valid() bool {
	switch i {
	case IntervalYear, IntervalMonth, IntervalDay:
		return true
	}
	return false
}

// FacetDefinition is a closed set of facet variants: taxonomy, post-type and
// date-histogram. The sealed interface forces exhaustive dispatch at the
// translation and resolution sites.
type FacetDefinition interface {
	MaxResults() int
	facetDefinition()
}

// TaxonomyFacet aggregates results by the terms of one taxonomy.
type TaxonomyFacet struct {
	Taxonomy string
	Count    int
}

func (f TaxonomyFacet) MaxResults() int  { return f.Count }
func (f TaxonomyFacet) facetDefinition() {}

// PostTypeFacet aggregates results by content type.
type PostTypeFacet struct {
	Count int
}

func (f PostTypeFacet) MaxResults() int  { return f.Count }
func (f PostTypeFacet) facetDefinition() {}

// DateHistogramFacet aggregates results into calendar buckets.
type DateHistogramFacet struct {
	Interval HistogramInterval
	Field    string
	Count    int
}

func (f DateHistogramFacet) MaxResults() int  { return f.Count }
func (f DateHistogramFacet) facetDefinition() {}

// FacetBucket is one raw aggregation bucket as reported by the index.
// Terms aggregations fill TermID (taxonomy facets) or TermName (post-type
// facets); date histograms fill Time with epoch milliseconds.
type FacetBucket struct {
	TermID   int64
	TermName string
	Time     int64
	Count    int64
}

// FilterDelta describes a navigation step: query variables to set and query
// variables to remove, relative to the current request state.
type FilterDelta struct {
	Set   map[string]string
	Clear []string
}

// FacetItem is one navigable entry of a resolved facet.
type FacetItem struct {
	Name  string
	Count int64
	Delta FilterDelta
}

// ResolvedFacet is a facet whose raw buckets have been resolved into
// human-meaningful, navigable items, truncated to the definition's
// MaxResults.
type ResolvedFacet struct {
	Label      string
	Definition FacetDefinition
	Items      []FacetItem
}

// CurrentFilter is one active filter component together with the delta that
// removes exactly that component while preserving the others.
type CurrentFilter struct {
	Name  string
	Type  string
	Delta FilterDelta
}

// FilterState is the explicit active-filter state of a request: taxonomy
// slugs keyed by taxonomy name, active post types, and the calendar drill-down
// components (zero means unset).
type FilterState struct {
	TermSlugs map[string][]string
	PostTypes []string
	Year      int
	Month     int
	Day       int
}
