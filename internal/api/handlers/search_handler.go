package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/query/services"
	apperrors "github.com/campushub/portal/backend/pkg/errors"
)

// SearchService is the query side used by SearchHandler.
type SearchService interface {
	Search(ctx context.Context, query string, filters entities.SearchFilters) (*services.Outcome, error)
	Get(ctx context.Context, t entities.ResultType, id string) (*entities.SearchResult, error)
	Resolve(ctx context.Context, refs []entities.ResultRef) ([]entities.SearchResult, error)
}

// AnalyticsService reads search analytics.
type AnalyticsService interface {
	GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)
}

// SearchHandler handles search and result lookup requests
type SearchHandler struct {
	search    SearchService
	analytics AnalyticsService
}

// NewSearchHandler creates a new search handler. analytics may be nil.
func NewSearchHandler(search SearchService, analytics AnalyticsService) *SearchHandler {
	return &SearchHandler{
		search:    search,
		analytics: analytics,
	}
}

// SearchResponse is the body of GET /api/search.
type SearchResponse struct {
	Query       string                  `json:"query"`
	ContentType entities.ContentType    `json:"content_type"`
	Results     []entities.SearchResult `json:"results"`
	Count       int                     `json:"count"`
	FailedTypes []entities.ResultType   `json:"failed_types"`
}

const maxRefs = 100

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := strings.TrimSpace(params.Get("q"))

	filters, err := parseFilters(params)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	out, err := h.search.Search(r.Context(), query, filters)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		respondWithAppError(w, r, err)
		return
	}

	failed := out.FailedTypes
	if failed == nil {
		failed = []entities.ResultType{}
	}
	respondWithJSON(w, http.StatusOK, SearchResponse{
		Query:       query,
		ContentType: filters.ContentType,
		Results:     out.Results,
		Count:       len(out.Results),
		FailedTypes: failed,
	})
}

// GetResult handles GET /api/results/{type}/{id}
func (h *SearchHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	t, err := entities.ParseResultType(r.PathValue("type"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "result ID is required")
		return
	}

	result, err := h.search.Get(r.Context(), t, id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ResolveResults handles GET /api/results?ref=note:ID&ref=event:ID
func (h *SearchHandler) ResolveResults(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query()["ref"]
	if len(raw) == 0 {
		respondWithError(w, http.StatusBadRequest, "at least one ref is required")
		return
	}
	if len(raw) > maxRefs {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("at most %d refs are allowed", maxRefs))
		return
	}

	refs := make([]entities.ResultRef, 0, len(raw))
	for _, s := range raw {
		ref, err := entities.ParseResultRef(s)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		refs = append(refs, ref)
	}

	results, err := h.search.Resolve(r.Context(), refs)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// GetZeroResultQueries handles GET /api/analytics/zero-result-queries
func (h *SearchHandler) GetZeroResultQueries(w http.ResponseWriter, r *http.Request) {
	if h.analytics == nil {
		respondWithError(w, http.StatusNotFound, "search analytics disabled")
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := h.analytics.GetZeroResultQueries(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, events)
}

func parseFilters(params url.Values) (entities.SearchFilters, error) {
	contentType, err := entities.ParseContentType(params.Get("type"))
	if err != nil {
		return entities.SearchFilters{}, apperrors.NewValidationError(err.Error())
	}

	f := entities.SearchFilters{
		ContentType: contentType,
		Subject:     strings.TrimSpace(params.Get("subject")),
		Course:      strings.TrimSpace(params.Get("course")),
		Semester:    strings.TrimSpace(params.Get("semester")),
		Location:    strings.TrimSpace(params.Get("location")),
	}

	switch kind := entities.LostFoundKind(params.Get("lf_type")); kind {
	case "", entities.LostFoundLost, entities.LostFoundFound:
		f.LostFoundType = kind
	default:
		return entities.SearchFilters{}, apperrors.NewValidationError(fmt.Sprintf("invalid lf_type %q", kind))
	}

	switch status := entities.LostFoundStatus(params.Get("lf_status")); status {
	case "", entities.LostFoundActive, entities.LostFoundResolved:
		f.LostFoundStatus = status
	default:
		return entities.SearchFilters{}, apperrors.NewValidationError(fmt.Sprintf("invalid lf_status %q", status))
	}

	if f.EventDateFrom, err = parseDate(params.Get("date_from"), false); err != nil {
		return entities.SearchFilters{}, apperrors.NewValidationError("invalid date_from: " + err.Error())
	}
	if f.EventDateTo, err = parseDate(params.Get("date_to"), true); err != nil {
		return entities.SearchFilters{}, apperrors.NewValidationError("invalid date_to: " + err.Error())
	}
	if f.EventDateFrom != nil && f.EventDateTo != nil && f.EventDateTo.Before(*f.EventDateFrom) {
		return entities.SearchFilters{}, apperrors.NewValidationError("date_to is before date_from")
	}

	return f, nil
}

// parseDate accepts RFC 3339 timestamps or YYYY-MM-DD dates. A bare date used
// as an upper bound covers that whole day.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
