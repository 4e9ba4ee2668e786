package usecase

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"content-search/domain"
	"content-search/esquery"
	"content-search/facet"
	"content-search/port"
	"content-search/utils"
	appOtel "content-search/utils/otel"
)

// SearchPostsInput is a search request plus the explicit active-filter
// state it was parsed from. Request.TermFilters, PostTypes and DateRange
// are derived from Filters when unset.
type SearchPostsInput struct {
	Request   domain.SearchRequest
	AuthorIDs []int64
	Filters   domain.FilterState
}

// SearchPostsOutput is everything a results page needs: ordered post IDs,
// the authoritative total, resolved facets and removable active filters.
type SearchPostsOutput struct {
	IDs            []int64
	Total          int64
	Facets         []domain.ResolvedFacet
	CurrentFilters []domain.CurrentFilter
}

// SearchPostsUsecase runs the full search path: resolve request inputs,
// translate to the index query document, query, and resolve facets.
//
// Index failures degrade to an empty result set rather than failing the
// page render; the error is still returned so callers can observe it.
type SearchPostsUsecase struct {
	index    port.IndexClient
	content  port.ContentRepository
	resolver *facet.Resolver
	cleaner  *utils.QueryCleaner
	logger   *slog.Logger
}

func NewSearchPostsUsecase(index port.IndexClient, content port.ContentRepository, resolver *facet.Resolver, logger *slog.Logger) *SearchPostsUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchPostsUsecase{
		index:    index,
		content:  content,
		resolver: resolver,
		cleaner:  utils.NewQueryCleaner(0),
		logger:   logger,
	}
}

func (u *SearchPostsUsecase) Execute(ctx context.Context, in SearchPostsInput) (*SearchPostsOutput, error) {
	start := time.Now()
	defer func() { appOtel.Metrics.RecordSearch(ctx, time.Since(start)) }()

	req := in.Request
	req.Query = u.cleaner.Clean(req.Query)

	if len(req.TermFilters) == 0 {
		req.TermFilters = in.Filters.TermSlugs
	}
	if len(req.PostTypes) == 0 {
		req.PostTypes = u.resolvePostTypes(ctx, in.Filters.PostTypes)
	}
	if req.DateRange == nil && in.Filters.Year > 0 {
		req.DateRange = domain.CalendarRange(in.Filters.Year, in.Filters.Month, in.Filters.Day)
	}
	if len(in.AuthorIDs) > 0 && len(req.AuthorKeys) == 0 {
		req.AuthorKeys = u.resolveAuthors(ctx, in.AuthorIDs)
	}

	doc := esquery.Build(req)
	doc.Fields = []string{"post_id"}

	resp, err := u.index.Query(ctx, doc)
	if err != nil {
		return u.degrade(ctx, err)
	}

	result, err := esquery.ExtractResult(resp)
	if err != nil {
		return u.degrade(ctx, err)
	}

	out := &SearchPostsOutput{
		IDs:            result.IDs,
		Total:          result.Total,
		Facets:         u.resolveFacets(ctx, req.Facets, result.Facets, in.Filters),
		CurrentFilters: u.resolver.CurrentFilters(ctx, req.Facets, in.Filters),
	}
	return out, nil
}

// degrade returns the empty-but-renderable output for an index failure and
// keeps the failure observable: logged, counted, and returned to the caller.
func (u *SearchPostsUsecase) degrade(ctx context.Context, err error) (*SearchPostsOutput, error) {
	u.logger.Error("search degraded to empty result",
		"kind", domain.IndexErrorKindOf(err).String(), "err", err)
	appOtel.Metrics.AddDegraded(ctx)
	return &SearchPostsOutput{IDs: []int64{}}, err
}

// resolvePostTypes expands an empty type filter to every searchable type.
// A repository failure falls back to the single default type.
func (u *SearchPostsUsecase) resolvePostTypes(ctx context.Context, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	types, err := u.content.SearchablePostTypes(ctx)
	if err != nil {
		u.logger.Warn("searchable types unavailable, using default", "err", err)
		return nil
	}
	return types
}

// resolveAuthors maps numeric author IDs to the keys the index stores.
// Unknown IDs are dropped.
func (u *SearchPostsUsecase) resolveAuthors(ctx context.Context, ids []int64) []string {
	var keys []string
	for _, id := range ids {
		login, err := u.content.AuthorLogin(ctx, id)
		if err != nil {
			u.logger.Warn("author lookup failed", "author_id", id, "err", err)
			continue
		}
		if login != "" {
			keys = append(keys, login)
		}
	}
	return keys
}

func (u *SearchPostsUsecase) resolveFacets(ctx context.Context, defs map[string]domain.FacetDefinition, buckets map[string][]domain.FacetBucket, active domain.FilterState) []domain.ResolvedFacet {
	if len(defs) == 0 {
		return nil
	}

	labels := make([]string, 0, len(defs))
	for label := range defs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var resolved []domain.ResolvedFacet
	for _, label := range labels {
		resolved = append(resolved, u.resolver.Resolve(ctx, label, defs[label], buckets[label], active))
	}
	return resolved
}

// ParseFilterState reads the active-filter state out of request query
// variables. Taxonomy filters are addressed by each taxonomy's registered
// query variable, multi-valued as comma-separated slugs.
func (u *SearchPostsUsecase) ParseFilterState(ctx context.Context, facets map[string]domain.FacetDefinition, queryVar func(string) string) domain.FilterState {
	state := domain.FilterState{
		PostTypes: splitCSV(queryVar("post_type")),
		Year:      atoiOrZero(queryVar("year")),
		Month:     atoiOrZero(queryVar("monthnum")),
		Day:       atoiOrZero(queryVar("day")),
	}

	for _, def := range facets {
		f, ok := def.(domain.TaxonomyFacet)
		if !ok {
			continue
		}
		tax, err := u.content.Taxonomy(ctx, f.Taxonomy)
		if err != nil || tax == nil {
			continue
		}
		slugs := splitCSV(queryVar(tax.QueryVar))
		if len(slugs) == 0 {
			continue
		}
		if state.TermSlugs == nil {
			state.TermSlugs = make(map[string][]string)
		}
		state.TermSlugs[f.Taxonomy] = slugs
	}

	return state
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
