package esquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-search/domain"
)

func TestBuild_Defaults(t *testing.T) {
	doc := Build(domain.SearchRequest{})

	assert.Equal(t, 10, doc.Size)
	assert.Nil(t, doc.From)
	assert.Nil(t, doc.Query)
	require.Len(t, doc.Filter.And, 1)
	assert.Equal(t, []string{"post"}, doc.Filter.And[0].Terms["post_type"])

	// No query text means recency ordering.
	require.Len(t, doc.Sort, 1)
	assert.Equal(t, "desc", doc.Sort[0]["date"].Order)
}

func TestBuild_QueryClause(t *testing.T) {
	doc := Build(domain.SearchRequest{Query: "hello world"})

	require.NotNil(t, doc.Query)
	mm := doc.Query.MultiMatch
	require.NotNil(t, mm)
	assert.Equal(t, "hello world", mm.Query)
	assert.Equal(t, domain.DefaultQueryFields(), mm.Fields)
	assert.Equal(t, "and", mm.Operator)

	require.Len(t, doc.Sort, 1)
	assert.Equal(t, "desc", doc.Sort[0]["_score"].Order)
}

func TestBuild_Pagination(t *testing.T) {
	t.Run("offset wins over page", func(t *testing.T) {
		doc := Build(domain.SearchRequest{Offset: 30, Page: 2, PostsPerPage: 10})
		require.NotNil(t, doc.From)
		assert.Equal(t, 30, *doc.From)
	})

	t.Run("page computes from", func(t *testing.T) {
		doc := Build(domain.SearchRequest{Page: 3, PostsPerPage: 20})
		require.NotNil(t, doc.From)
		assert.Equal(t, 40, *doc.From)
	})

	t.Run("first page has no from", func(t *testing.T) {
		doc := Build(domain.SearchRequest{})
		assert.Nil(t, doc.From)
	})
}

func TestBuild_Filters(t *testing.T) {
	doc := Build(domain.SearchRequest{
		PostTypes:  []string{"post", "page"},
		AuthorKeys: []string{"alice"},
		TermFilters: map[string][]string{
			"post_tag": {"go", "redis"},
			"category": {"news"},
			"series":   {"s1"},
		},
		DateRange: &domain.DateRange{Field: "date", GTE: "2024-01-01 00:00:00", LTE: "2024-12-31 23:59:59"},
	})

	and := doc.Filter.And
	require.Len(t, and, 7)

	assert.Equal(t, []string{"post", "page"}, and[0].Terms["post_type"])
	assert.Equal(t, []string{"alice"}, and[1].Terms["author_login"])
	assert.Equal(t, "2024-01-01 00:00:00", and[2].Range["date"].GTE)

	// Taxonomies in sorted order, one term filter per slug.
	assert.Equal(t, "news", and[3].Term["category.slug"])
	assert.Equal(t, "go", and[4].Term["tag.slug"])
	assert.Equal(t, "redis", and[5].Term["tag.slug"])
	assert.Equal(t, "s1", and[6].Term["taxonomy.series.slug"])
}

func TestBuild_SortMapping(t *testing.T) {
	doc := Build(domain.SearchRequest{
		Query: "x",
		Sorts: []domain.SortClause{
			{Field: "date", Direction: "ASC"},
			{Field: "bogus", Direction: "asc"},
			{Field: "author", Direction: "sideways"},
			{Field: "ID", Direction: domain.SortAsc},
		},
	})

	require.Len(t, doc.Sort, 3)
	assert.Equal(t, "asc", doc.Sort[0]["date"].Order)
	assert.Equal(t, "desc", doc.Sort[1]["author.raw"].Order)
	assert.Equal(t, "asc", doc.Sort[2]["id"].Order)
}

func TestBuild_Facets(t *testing.T) {
	doc := Build(domain.SearchRequest{
		Facets: map[string]domain.FacetDefinition{
			"Tags":    domain.TaxonomyFacet{Taxonomy: "post_tag", Count: 5},
			"Series":  domain.TaxonomyFacet{Taxonomy: "series", Count: 7},
			"Type":    domain.PostTypeFacet{Count: 3},
			"Archive": domain.DateHistogramFacet{Interval: domain.IntervalMonth, Count: 12},
			"GMT":     domain.DateHistogramFacet{Interval: domain.IntervalYear, Field: "post_date_gmt", Count: 4},
			"Bad":     domain.DateHistogramFacet{Interval: "weekly", Count: 1},
		},
	})

	require.Len(t, doc.Facets, 5)

	tags := doc.Facets["Tags"]
	require.NotNil(t, tags.Terms)
	assert.Equal(t, "tag.term_id", tags.Terms.Field)
	assert.Equal(t, 5, tags.Terms.Size)

	series := doc.Facets["Series"]
	require.NotNil(t, series.Terms)
	assert.Equal(t, "taxonomy.series.term_id", series.Terms.Field)

	typ := doc.Facets["Type"]
	require.NotNil(t, typ.Terms)
	assert.Equal(t, "post_type", typ.Terms.Field)

	archive := doc.Facets["Archive"]
	require.NotNil(t, archive.DateHistogram)
	assert.Equal(t, "month", archive.DateHistogram.Interval)
	assert.Equal(t, "date", archive.DateHistogram.Field)

	gmt := doc.Facets["GMT"]
	require.NotNil(t, gmt.DateHistogram)
	assert.Equal(t, "date_gmt", gmt.DateHistogram.Field)

	_, ok := doc.Facets["Bad"]
	assert.False(t, ok, "invalid interval must be dropped")
}

func TestTaxonomyFieldMapping(t *testing.T) {
	assert.Equal(t, "tag.slug", TaxonomyFilterField("post_tag"))
	assert.Equal(t, "category.slug", TaxonomyFilterField("category"))
	assert.Equal(t, "taxonomy.genre.slug", TaxonomyFilterField("genre"))
}
