package facet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-search/domain"
)

type fakeLookup struct {
	taxonomies map[string]*domain.Taxonomy
	terms      map[string]map[int64]*domain.Term
	postTypes  map[string]*domain.PostType
}

func (f *fakeLookup) Taxonomy(_ context.Context, name string) (*domain.Taxonomy, error) {
	return f.taxonomies[name], nil
}

func (f *fakeLookup) TermByID(_ context.Context, taxonomy string, id int64) (*domain.Term, error) {
	return f.terms[taxonomy][id], nil
}

func (f *fakeLookup) TermBySlug(_ context.Context, taxonomy, slug string) (*domain.Term, error) {
	for _, term := range f.terms[taxonomy] {
		if term.Slug == slug {
			return term, nil
		}
	}
	return nil, nil
}

func (f *fakeLookup) PostType(_ context.Context, name string) (*domain.PostType, error) {
	return f.postTypes[name], nil
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		taxonomies: map[string]*domain.Taxonomy{
			"post_tag": {Name: "post_tag", QueryVar: "tag", SingularLabel: "Tag"},
		},
		terms: map[string]map[int64]*domain.Term{
			"post_tag": {
				1: {ID: 1, Taxonomy: "post_tag", Slug: "go", Name: "Go"},
				2: {ID: 2, Taxonomy: "post_tag", Slug: "redis", Name: "Redis"},
				3: {ID: 3, Taxonomy: "post_tag", Slug: "http", Name: "HTTP"},
			},
		},
		postTypes: map[string]*domain.PostType{
			"post":   {Name: "post", SingularLabel: "Post"},
			"page":   {Name: "page", SingularLabel: "Page"},
			"secret": {Name: "secret", SingularLabel: "Secret", ExcludeFromSearch: true},
		},
	}
}

func TestResolve_TaxonomyFacet(t *testing.T) {
	r := NewResolver(newFakeLookup(), nil)

	buckets := []domain.FacetBucket{
		{TermID: 1, Count: 10},
		{TermID: 2, Count: 5},
		{TermID: 99, Count: 3}, // deleted term
	}
	active := domain.FilterState{TermSlugs: map[string][]string{"post_tag": {"go"}}}

	resolved := r.Resolve(context.Background(), "Tags", domain.TaxonomyFacet{Taxonomy: "post_tag", Count: 10}, buckets, active)

	// "go" is already filtered and term 99 is gone; only "redis" remains.
	require.Len(t, resolved.Items, 1)
	item := resolved.Items[0]
	assert.Equal(t, "Redis", item.Name)
	assert.Equal(t, int64(5), item.Count)
	assert.Equal(t, "go,redis", item.Delta.Set["tag"])
}

func TestResolve_Truncation(t *testing.T) {
	r := NewResolver(newFakeLookup(), nil)

	buckets := []domain.FacetBucket{
		{TermID: 1, Count: 10},
		{TermID: 2, Count: 5},
		{TermID: 3, Count: 2},
	}

	resolved := r.Resolve(context.Background(), "Tags", domain.TaxonomyFacet{Taxonomy: "post_tag", Count: 2}, buckets, domain.FilterState{})

	require.Len(t, resolved.Items, 2)
	assert.Equal(t, "Go", resolved.Items[0].Name)
	assert.Equal(t, "Redis", resolved.Items[1].Name)
}

func TestResolve_PostTypeFacet(t *testing.T) {
	r := NewResolver(newFakeLookup(), nil)

	buckets := []domain.FacetBucket{
		{TermName: "post", Count: 8},
		{TermName: "secret", Count: 4},
		{TermName: "ghost", Count: 2},
	}

	resolved := r.Resolve(context.Background(), "Type", domain.PostTypeFacet{Count: 10}, buckets, domain.FilterState{})

	require.Len(t, resolved.Items, 1)
	assert.Equal(t, "Post", resolved.Items[0].Name)
	assert.Equal(t, "post", resolved.Items[0].Delta.Set["post_type"])
}

func TestResolve_DateHistogram(t *testing.T) {
	r := NewResolver(newFakeLookup(), nil)

	// 2024-02-15 00:00:00 UTC
	buckets := []domain.FacetBucket{{Time: 1707955200000, Count: 6}}

	t.Run("year", func(t *testing.T) {
		resolved := r.Resolve(context.Background(), "Archive", domain.DateHistogramFacet{Interval: domain.IntervalYear, Count: 10}, buckets, domain.FilterState{})
		require.Len(t, resolved.Items, 1)
		item := resolved.Items[0]
		assert.Equal(t, "2024", item.Name)
		assert.Equal(t, "2024", item.Delta.Set["year"])
		assert.ElementsMatch(t, []string{"monthnum", "day"}, item.Delta.Clear)
	})

	t.Run("month", func(t *testing.T) {
		resolved := r.Resolve(context.Background(), "Archive", domain.DateHistogramFacet{Interval: domain.IntervalMonth, Count: 10}, buckets, domain.FilterState{})
		require.Len(t, resolved.Items, 1)
		item := resolved.Items[0]
		assert.Equal(t, "February 2024", item.Name)
		assert.Equal(t, "2024", item.Delta.Set["year"])
		assert.Equal(t, "2", item.Delta.Set["monthnum"])
		assert.Equal(t, []string{"day"}, item.Delta.Clear)
	})

	t.Run("day", func(t *testing.T) {
		resolved := r.Resolve(context.Background(), "Archive", domain.DateHistogramFacet{Interval: domain.IntervalDay, Count: 10}, buckets, domain.FilterState{})
		require.Len(t, resolved.Items, 1)
		item := resolved.Items[0]
		assert.Equal(t, "February 15th, 2024", item.Name)
		assert.Equal(t, "15", item.Delta.Set["day"])
		assert.Empty(t, item.Delta.Clear)
	})
}

func TestCurrentFilters_RemovalDeltas(t *testing.T) {
	r := NewResolver(newFakeLookup(), nil)

	facets := map[string]domain.FacetDefinition{
		"Tags": domain.TaxonomyFacet{Taxonomy: "post_tag", Count: 10},
		"Type": domain.PostTypeFacet{Count: 10},
	}
	active := domain.FilterState{
		TermSlugs: map[string][]string{"post_tag": {"go", "redis"}},
		PostTypes: []string{"post"},
	}

	filters := r.CurrentFilters(context.Background(), facets, active)
	require.Len(t, filters, 3)

	// Labels are walked in sorted order: Tags before Type.
	assert.Equal(t, "Go", filters[0].Name)
	assert.Equal(t, "Tag", filters[0].Type)
	assert.Equal(t, "redis", filters[0].Delta.Set["tag"])

	assert.Equal(t, "Redis", filters[1].Name)
	assert.Equal(t, "go", filters[1].Delta.Set["tag"])

	// Last post type clears the query var entirely.
	assert.Equal(t, "Post", filters[2].Name)
	assert.Equal(t, []string{"post_type"}, filters[2].Delta.Clear)
}

func TestCurrentFilters_DateComponents(t *testing.T) {
	r := NewResolver(newFakeLookup(), nil)

	facets := map[string]domain.FacetDefinition{
		"Archive": domain.DateHistogramFacet{Interval: domain.IntervalMonth, Count: 10},
	}
	active := domain.FilterState{Year: 2024, Month: 2}

	filters := r.CurrentFilters(context.Background(), facets, active)
	require.Len(t, filters, 1)
	assert.Equal(t, "February 2024", filters[0].Name)
	assert.Equal(t, "Month", filters[0].Type)
	assert.ElementsMatch(t, []string{"monthnum", "day"}, filters[0].Delta.Clear)
}
