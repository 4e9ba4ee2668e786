// Package facet resolves raw index aggregation buckets into navigable
// filter descriptors and computes removal deltas for active filters.
package facet

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"content-search/domain"
)

// Lookup is the slice of the content repository the resolver needs.
type Lookup interface {
	Taxonomy(ctx context.Context, name string) (*domain.Taxonomy, error)
	TermByID(ctx context.Context, taxonomy string, id int64) (*domain.Term, error)
	TermBySlug(ctx context.Context, taxonomy, slug string) (*domain.Term, error)
	PostType(ctx context.Context, name string) (*domain.PostType, error)
}

// Resolver turns raw facet buckets into human-meaningful items. Buckets
// referencing deleted terms, unsearchable post types or unknown intervals
// are dropped rather than failing the search; partial degradation beats a
// failed page render.
type Resolver struct {
	content Lookup
	logger  *slog.Logger
}

func NewResolver(content Lookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{content: content, logger: logger}
}

// Resolve maps one facet's buckets into navigable items, truncated to the
// definition's max results. The backend ignores size hints for histogram
// aggregations, so truncation is enforced here regardless.
func (r *Resolver) Resolve(ctx context.Context, label string, def domain.FacetDefinition, buckets []domain.FacetBucket, active domain.FilterState) domain.ResolvedFacet {
	resolved := domain.ResolvedFacet{Label: label, Definition: def}

	if max := def.MaxResults(); max > 0 && len(buckets) > max {
		buckets = buckets[:max]
	}

	switch f := def.(type) {
	case domain.TaxonomyFacet:
		resolved.Items = r.resolveTaxonomy(ctx, f, buckets, active)
	case domain.PostTypeFacet:
		resolved.Items = r.resolvePostType(ctx, buckets)
	case domain.DateHistogramFacet:
		resolved.Items = r.resolveDateHistogram(f, buckets)
	}

	return resolved
}

func (r *Resolver) resolveTaxonomy(ctx context.Context, f domain.TaxonomyFacet, buckets []domain.FacetBucket, active domain.FilterState) []domain.FacetItem {
	tax, err := r.content.Taxonomy(ctx, f.Taxonomy)
	if err != nil || tax == nil {
		r.logger.Debug("dropping facet for unknown taxonomy", "taxonomy", f.Taxonomy, "err", err)
		return nil
	}

	activeSlugs := active.TermSlugs[f.Taxonomy]

	var items []domain.FacetItem
	for _, b := range buckets {
		term, err := r.content.TermByID(ctx, f.Taxonomy, b.TermID)
		if err != nil || term == nil {
			continue
		}
		// No self-refinement on a term that is already filtered.
		if containsString(activeSlugs, term.Slug) {
			continue
		}

		slugs := append(append([]string{}, activeSlugs...), term.Slug)
		items = append(items, domain.FacetItem{
			Name:  term.Name,
			Count: b.Count,
			Delta: domain.FilterDelta{
				Set: map[string]string{tax.QueryVar: strings.Join(slugs, ",")},
			},
		})
	}
	return items
}

func (r *Resolver) resolvePostType(ctx context.Context, buckets []domain.FacetBucket) []domain.FacetItem {
	var items []domain.FacetItem
	for _, b := range buckets {
		pt, err := r.content.PostType(ctx, b.TermName)
		if err != nil || pt == nil || pt.ExcludeFromSearch {
			continue
		}
		items = append(items, domain.FacetItem{
			Name:  pt.SingularLabel,
			Count: b.Count,
			Delta: domain.FilterDelta{
				Set: map[string]string{"post_type": pt.Name},
			},
		})
	}
	return items
}

func (r *Resolver) resolveDateHistogram(f domain.DateHistogramFacet, buckets []domain.FacetBucket) []domain.FacetItem {
	var items []domain.FacetItem
	for _, b := range buckets {
		t := time.UnixMilli(b.Time).UTC()

		var item domain.FacetItem
		switch f.Interval {
		case domain.IntervalYear:
			item = domain.FacetItem{
				Name: t.Format("2006"),
				Delta: domain.FilterDelta{
					Set:   map[string]string{"year": strconv.Itoa(t.Year())},
					Clear: []string{"monthnum", "day"},
				},
			}
		case domain.IntervalMonth:
			item = domain.FacetItem{
				Name: t.Format("January 2006"),
				Delta: domain.FilterDelta{
					Set: map[string]string{
						"year":     strconv.Itoa(t.Year()),
						"monthnum": strconv.Itoa(int(t.Month())),
					},
					Clear: []string{"day"},
				},
			}
		case domain.IntervalDay:
			item = domain.FacetItem{
				Name: t.Format("January ") + domain.OrdinalDay(t.Day()) + t.Format(", 2006"),
				Delta: domain.FilterDelta{
					Set: map[string]string{
						"year":     strconv.Itoa(t.Year()),
						"monthnum": strconv.Itoa(int(t.Month())),
						"day":      strconv.Itoa(t.Day()),
					},
				},
			}
		default:
			// Unreachable after definition validation; drop defensively.
			continue
		}

		item.Count = b.Count
		items = append(items, item)
	}
	return items
}

// CurrentFilters emits one removal entry per active filter component. Each
// delta removes exactly that component: a multi-valued taxonomy or
// post-type filter loses only the one slug or type, not the whole set.
func (r *Resolver) CurrentFilters(ctx context.Context, facets map[string]domain.FacetDefinition, active domain.FilterState) []domain.CurrentFilter {
	var filters []domain.CurrentFilter

	labels := make([]string, 0, len(facets))
	for label := range facets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		switch f := facets[label].(type) {
		case domain.TaxonomyFacet:
			filters = append(filters, r.currentTaxonomyFilters(ctx, f, active)...)
		case domain.PostTypeFacet:
			filters = append(filters, r.currentPostTypeFilters(ctx, label, active)...)
		case domain.DateHistogramFacet:
			if cf := currentDateFilter(f, active); cf != nil {
				filters = append(filters, *cf)
			}
		}
	}

	return filters
}

func (r *Resolver) currentTaxonomyFilters(ctx context.Context, f domain.TaxonomyFacet, active domain.FilterState) []domain.CurrentFilter {
	slugs := active.TermSlugs[f.Taxonomy]
	if len(slugs) == 0 {
		return nil
	}

	tax, err := r.content.Taxonomy(ctx, f.Taxonomy)
	if err != nil || tax == nil {
		return nil
	}

	var filters []domain.CurrentFilter
	for _, slug := range slugs {
		term, err := r.content.TermBySlug(ctx, f.Taxonomy, slug)
		if err != nil || term == nil {
			continue
		}
		filters = append(filters, domain.CurrentFilter{
			Name:  term.Name,
			Type:  tax.SingularLabel,
			Delta: removalDelta(tax.QueryVar, slugs, slug),
		})
	}
	return filters
}

func (r *Resolver) currentPostTypeFilters(ctx context.Context, label string, active domain.FilterState) []domain.CurrentFilter {
	if len(active.PostTypes) == 0 {
		return nil
	}

	var filters []domain.CurrentFilter
	for _, name := range active.PostTypes {
		pt, err := r.content.PostType(ctx, name)
		if err != nil || pt == nil {
			continue
		}
		filters = append(filters, domain.CurrentFilter{
			Name:  pt.SingularLabel,
			Type:  label,
			Delta: removalDelta("post_type", active.PostTypes, name),
		})
	}
	return filters
}

func currentDateFilter(f domain.DateHistogramFacet, active domain.FilterState) *domain.CurrentFilter {
	switch f.Interval {
	case domain.IntervalYear:
		if active.Year == 0 {
			return nil
		}
		return &domain.CurrentFilter{
			Name:  strconv.Itoa(active.Year),
			Type:  "Year",
			Delta: domain.FilterDelta{Clear: []string{"year", "monthnum", "day"}},
		}
	case domain.IntervalMonth:
		if active.Year == 0 || active.Month == 0 {
			return nil
		}
		t := time.Date(active.Year, time.Month(active.Month), 1, 0, 0, 0, 0, time.UTC)
		return &domain.CurrentFilter{
			Name:  t.Format("January 2006"),
			Type:  "Month",
			Delta: domain.FilterDelta{Clear: []string{"monthnum", "day"}},
		}
	case domain.IntervalDay:
		if active.Year == 0 || active.Month == 0 || active.Day == 0 {
			return nil
		}
		t := time.Date(active.Year, time.Month(active.Month), active.Day, 0, 0, 0, 0, time.UTC)
		return &domain.CurrentFilter{
			Name:  t.Format("January ") + domain.OrdinalDay(active.Day) + t.Format(", 2006"),
			Type:  "Day",
			Delta: domain.FilterDelta{Clear: []string{"day"}},
		}
	}
	return nil
}

// removalDelta removes one value from a comma-joined multi-valued query
// variable, clearing it entirely when it was the last value.
func removalDelta(queryVar string, values []string, remove string) domain.FilterDelta {
	remaining := make([]string, 0, len(values))
	for _, v := range values {
		if v != remove {
			remaining = append(remaining, v)
		}
	}
	if len(remaining) == 0 {
		return domain.FilterDelta{Clear: []string{queryVar}}
	}
	return domain.FilterDelta{Set: map[string]string{queryVar: strings.Join(remaining, ",")}}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
