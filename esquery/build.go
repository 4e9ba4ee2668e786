package esquery

import (
	"sort"
	"strings"

	"content-search/domain"
)

// Build translates a SearchRequest into the index query document.
//
// The caller is responsible for resolving collaborator-dependent inputs
// beforehand: author IDs into author keys and the content-type default into
// an explicit type list. An empty PostTypes falls back to the single default
// type; a request with no filters at all degrades to match_all.
func Build(req domain.SearchRequest) *Document {
	size := req.PostsPerPage
	if size <= 0 {
		size = domain.DefaultPostsPerPage
	}

	doc := &Document{Size: size}

	if req.Offset > 0 {
		from := req.Offset
		doc.From = &from
	} else if req.Page > 0 {
		from := (req.Page - 1) * size
		if from < 0 {
			from = 0
		}
		doc.From = &from
	}

	doc.Filter = buildFilter(req)
	doc.Query = buildQuery(req)
	doc.Sort = buildSort(req)
	doc.Facets = buildFacets(req.Facets)

	return doc
}

func buildFilter(req domain.SearchRequest) Filter {
	var filters []Filter

	postTypes := req.PostTypes
	if len(postTypes) == 0 {
		postTypes = []string{domain.DefaultPostType}
	}
	filters = append(filters, Filter{Terms: map[string][]string{"post_type": postTypes}})

	if len(req.AuthorKeys) > 0 {
		filters = append(filters, Filter{Terms: map[string][]string{"author_login": req.AuthorKeys}})
	}

	if r := req.DateRange; r != nil && r.Field != "" {
		filters = append(filters, Filter{Range: map[string]RangeBounds{
			r.Field: {GT: r.GT, GTE: r.GTE, LT: r.LT, LTE: r.LTE},
		}})
	}

	// One term filter per taxonomy/slug pair, taxonomies in stable order.
	taxonomies := make([]string, 0, len(req.TermFilters))
	for tax := range req.TermFilters {
		taxonomies = append(taxonomies, tax)
	}
	sort.Strings(taxonomies)
	for _, tax := range taxonomies {
		field := TaxonomyFilterField(tax)
		for _, slug := range req.TermFilters[tax] {
			filters = append(filters, Filter{Term: map[string]string{field: slug}})
		}
	}

	if len(filters) == 0 {
		return Filter{MatchAll: &MatchAll{}}
	}
	return Filter{And: filters}
}

func buildQuery(req domain.SearchRequest) *QueryClause {
	if req.Query == "" {
		return nil
	}
	fields := req.QueryFields
	if len(fields) == 0 {
		fields = domain.DefaultQueryFields()
	}
	return &QueryClause{MultiMatch: &MultiMatch{
		Query:    req.Query,
		Fields:   fields,
		Operator: "and",
	}}
}

func buildSort(req domain.SearchRequest) []SortClause {
	sorts := req.Sorts
	if len(sorts) == 0 {
		// Relevance when there is something to rank by, recency otherwise.
		if req.Query != "" {
			sorts = []domain.SortClause{{Field: "relevance", Direction: domain.SortDesc}}
		} else {
			sorts = []domain.SortClause{{Field: "date", Direction: domain.SortDesc}}
		}
	}

	var clauses []SortClause
	for _, s := range sorts {
		field, ok := sortField(s.Field)
		if !ok {
			continue
		}
		clauses = append(clauses, SortClause{field: {Order: normalizeDirection(s.Direction)}})
	}
	return clauses
}

// sortField maps request sort keys to index fields. Unrecognized keys are
// dropped silently.
func sortField(key string) (string, bool) {
	switch key {
	case "relevance":
		return "_score", true
	case "date":
		return "date", true
	case "id", "ID":
		return "id", true
	case "author":
		return "author.raw", true
	}
	return "", false
}

// normalizeDirection accepts asc/desc case-insensitively and coerces
// everything else to descending.
func normalizeDirection(d domain.SortDirection) string {
	if strings.EqualFold(string(d), "asc") {
		return "asc"
	}
	return "desc"
}

func buildFacets(defs map[string]domain.FacetDefinition) map[string]FacetClause {
	if len(defs) == 0 {
		return nil
	}

	facets := make(map[string]FacetClause, len(defs))
	for label, def := range defs {
		switch f := def.(type) {
		case domain.TaxonomyFacet:
			facets[label] = FacetClause{Terms: &TermsFacet{
				Field: TaxonomyFacetField(f.Taxonomy) + ".term_id",
				Size:  f.Count,
			}}
		case domain.PostTypeFacet:
			facets[label] = FacetClause{Terms: &TermsFacet{
				Field: "post_type",
				Size:  f.Count,
			}}
		case domain.DateHistogramFacet:
			if !f.Interval.Valid() {
				continue
			}
			field := "date"
			if f.Field == "post_date_gmt" {
				field = "date_gmt"
			}
			facets[label] = FacetClause{DateHistogram: &DateHistogramFacet{
				Interval: string(f.Interval),
				Field:    field,
				Size:     f.Count,
			}}
		}
	}

	if len(facets) == 0 {
		return nil
	}
	return facets
}

// TaxonomyFilterField maps a taxonomy name to the slug field its filters
// target.
func TaxonomyFilterField(taxonomy string) string {
	return TaxonomyFacetField(taxonomy) + ".slug"
}

// TaxonomyFacetField maps a taxonomy name to its base field in the index
// document.
func TaxonomyFacetField(taxonomy string) string {
	switch taxonomy {
	case "post_tag":
		return "tag"
	case "category":
		return "category"
	default:
		return "taxonomy." + taxonomy
	}
}
