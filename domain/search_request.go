package domain

// Defaults applied when a SearchRequest leaves a field unset.
const (
	DefaultPostsPerPage = 10
	DefaultPostType     = "post"
)

// DefaultQueryFields are the index fields a free-text query matches against
// when the request does not name its own.
func DefaultQueryFields() []string {
	return []string{"title", "content", "author_name", "excerpt"}
}

// SortDirection is a sort order, ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortClause is one requested sort key with its direction.
type SortClause struct {
	Field     string
	Direction SortDirection
}

// DateRange filters on a date field. Bounds are passed through to the index
// verbatim; empty bounds are omitted.
type DateRange struct {
	Field string
	GT    string
	GTE   string
	LT    string
	LTE   string
}

// SearchRequest is a generic content-search request, independent of the
// index backend's wire format.
//
// Offset and Page are mutually exclusive; a positive Offset wins when both
// are given. AuthorKeys hold already-resolved author identifiers (the index
// stores author keys, not numeric IDs); callers with only numeric IDs must
// resolve them against the content repository first.
type SearchRequest struct {
	Query       string
	QueryFields []string

	PostTypes   []string
	AuthorKeys  []string
	TermFilters map[string][]string
	DateRange   *DateRange

	Sorts []SortClause

	PostsPerPage int
	Offset       int
	Page         int

	Facets map[string]FacetDefinition
}
