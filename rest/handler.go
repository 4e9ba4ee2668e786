package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"content-search/domain"
	"content-search/usecase"
)

// Handler exposes the search and sync endpoints.
type Handler struct {
	search  *usecase.SearchPostsUsecase
	reindex *usecase.ReindexUsecase
	facets  map[string]domain.FacetDefinition
	logger  *slog.Logger
}

func NewHandler(search *usecase.SearchPostsUsecase, reindex *usecase.ReindexUsecase, facets map[string]domain.FacetDefinition, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		search:  search,
		reindex: reindex,
		facets:  facets,
		logger:  logger,
	}
}

// RegisterRoutes mounts all endpoints on the echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/health", h.Health)
	e.GET("/v1/search", h.Search)
	e.GET("/v1/sync/status", h.SyncStatus)
	e.POST("/v1/sync", h.StartSync)
	e.POST("/v1/sync/cancel", h.CancelSync)
}

type searchResponse struct {
	Query          string                `json:"query"`
	Total          int64                 `json:"total"`
	PostIDs        []int64               `json:"post_ids"`
	Facets         []facetResponse       `json:"facets,omitempty"`
	CurrentFilters []activeFilterPayload `json:"current_filters,omitempty"`
}

type facetResponse struct {
	Label string             `json:"label"`
	Items []facetItemPayload `json:"items"`
}

type facetItemPayload struct {
	Name  string            `json:"name"`
	Count int64             `json:"count"`
	Set   map[string]string `json:"set,omitempty"`
	Clear []string          `json:"clear,omitempty"`
}

type activeFilterPayload struct {
	Name  string            `json:"name"`
	Type  string            `json:"type"`
	Set   map[string]string `json:"set,omitempty"`
	Clear []string          `json:"clear,omitempty"`
}

// Search runs a content search. Index failures degrade to an empty result
// set with HTTP 200; the page renders with zero results instead of erroring.
func (h *Handler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	req := domain.SearchRequest{
		Query:        c.QueryParam("q"),
		PostsPerPage: atoi(c.QueryParam("per_page")),
		Page:         atoi(c.QueryParam("paged")),
		Offset:       atoi(c.QueryParam("offset")),
		Sorts:        parseSorts(c.QueryParam("orderby"), c.QueryParam("order")),
		Facets:       h.facets,
	}

	in := usecase.SearchPostsInput{
		Request: req,
		Filters: h.search.ParseFilterState(ctx, h.facets, c.QueryParam),
	}

	out, err := h.search.Execute(ctx, in)
	if err != nil {
		h.logger.Warn("search returned degraded result", "query", req.Query, "err", err)
	}

	resp := searchResponse{
		Query:   req.Query,
		Total:   out.Total,
		PostIDs: out.IDs,
	}
	for _, f := range out.Facets {
		fr := facetResponse{Label: f.Label}
		for _, item := range f.Items {
			fr.Items = append(fr.Items, facetItemPayload{
				Name:  item.Name,
				Count: item.Count,
				Set:   item.Delta.Set,
				Clear: item.Delta.Clear,
			})
		}
		resp.Facets = append(resp.Facets, fr)
	}
	for _, cf := range out.CurrentFilters {
		resp.CurrentFilters = append(resp.CurrentFilters, activeFilterPayload{
			Name:  cf.Name,
			Type:  cf.Type,
			Set:   cf.Delta.Set,
			Clear: cf.Delta.Clear,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

type syncStatusResponse struct {
	Status      string `json:"status"`
	Processed   int64  `json:"processed"`
	Total       int64  `json:"total"`
	CurrentPage int64  `json:"current_page"`
	RunID       string `json:"run_id,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

// SyncStatus reports the persisted state of the current or last reindex.
func (h *Handler) SyncStatus(c echo.Context) error {
	st, err := h.reindex.Status(c.Request().Context())
	if err != nil {
		h.logger.Error("sync status unavailable", "err", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "sync state unavailable")
	}

	return c.JSON(http.StatusOK, syncStatusResponse{
		Status:      string(st.Status()),
		Processed:   st.Processed,
		Total:       st.Total,
		CurrentPage: st.CurrentPage,
		RunID:       st.RunID,
		LastError:   st.LastError,
	})
}

// StartSync launches a full reindex. A run already in flight is a conflict.
func (h *Handler) StartSync(c echo.Context) error {
	st, err := h.reindex.Start(c.Request().Context())
	if errors.Is(err, domain.ErrAlreadyRunning) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		h.logger.Error("failed to start reindex", "err", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "failed to start reindex")
	}

	return c.JSON(http.StatusAccepted, syncStatusResponse{
		Status:      string(st.Status()),
		Processed:   st.Processed,
		Total:       st.Total,
		CurrentPage: st.CurrentPage,
		RunID:       st.RunID,
	})
}

// CancelSync requests cooperative cancellation of the running reindex.
func (h *Handler) CancelSync(c echo.Context) error {
	err := h.reindex.Cancel(c.Request().Context())
	if errors.Is(err, domain.ErrNotRunning) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		h.logger.Error("failed to cancel reindex", "err", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "failed to cancel reindex")
	}
	return c.NoContent(http.StatusAccepted)
}

// Health is the liveness probe.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseSorts reads the orderby/order pair. Multiple comma-separated keys
// share the one direction.
func parseSorts(orderby, order string) []domain.SortClause {
	if orderby == "" {
		return nil
	}
	dir := domain.SortDesc
	if order != "" {
		dir = domain.SortDirection(order)
	}
	var sorts []domain.SortClause
	for _, key := range strings.Split(orderby, ",") {
		if key = strings.TrimSpace(key); key != "" {
			sorts = append(sorts, domain.SortClause{Field: key, Direction: dir})
		}
	}
	return sorts
}
