package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/campushub/portal/backend/internal/api/handlers"
	"github.com/campushub/portal/backend/internal/domain/entities"
	"github.com/campushub/portal/backend/internal/domain/repositories"
	"github.com/campushub/portal/backend/internal/query/adapters"
	"github.com/campushub/portal/backend/internal/query/services"
	apperrors "github.com/campushub/portal/backend/pkg/errors"
)

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string, filters entities.SearchFilters) (*services.Outcome, error) {
	args := m.Called(ctx, query, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Outcome), args.Error(1)
}

func (m *MockSearchService) Get(ctx context.Context, t entities.ResultType, id string) (*entities.SearchResult, error) {
	args := m.Called(ctx, t, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SearchResult), args.Error(1)
}

func (m *MockSearchService) Resolve(ctx context.Context, refs []entities.ResultRef) ([]entities.SearchResult, error) {
	args := m.Called(ctx, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.SearchResult), args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.SearchEvent), args.Error(1)
}

func newMux(h *handlers.SearchHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", h.Search)
	mux.HandleFunc("GET /api/results", h.ResolveResults)
	mux.HandleFunc("GET /api/results/{type}/{id}", h.GetResult)
	mux.HandleFunc("GET /api/analytics/zero-result-queries", h.GetZeroResultQueries)
	return mux
}

func serve(mux http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSearchHandler_Search(t *testing.T) {
	svc := new(MockSearchService)
	mux := newMux(handlers.NewSearchHandler(svc, nil))

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 30, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	note := entities.NewNoteResult(&entities.Note{ID: "n1", Title: "Organic chemistry", Content: "Alkanes"})

	svc.On("Search", mock.Anything, "chem", mock.MatchedBy(func(f entities.SearchFilters) bool {
		return f.ContentType == entities.ContentAll &&
			f.Subject == "Chemistry" &&
			f.EventDateFrom != nil && f.EventDateFrom.Equal(from) &&
			f.EventDateTo != nil && f.EventDateTo.Equal(to) &&
			f.LostFoundType == entities.LostFoundFound
	})).Return(&services.Outcome{
		Results:     []entities.SearchResult{note},
		FailedTypes: []entities.ResultType{entities.ResultEvent},
	}, nil)

	w := serve(mux, "/api/search?q=+chem+&subject=Chemistry&date_from=2026-04-01&date_to=2026-04-30&lf_type=found")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Query       string                   `json:"query"`
		ContentType string                   `json:"content_type"`
		Count       int                      `json:"count"`
		FailedTypes []string                 `json:"failed_types"`
		Results     []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "chem", body.Query)
	assert.Equal(t, "all", body.ContentType)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, []string{"event"}, body.FailedTypes)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "note", body.Results[0]["type"])
	assert.Equal(t, "Alkanes", body.Results[0]["description"])
	assert.Contains(t, body.Results[0], "note")
	svc.AssertExpectations(t)
}

func TestSearchHandler_SearchEmptyFailedTypes(t *testing.T) {
	svc := new(MockSearchService)
	mux := newMux(handlers.NewSearchHandler(svc, nil))

	svc.On("Search", mock.Anything, "", mock.Anything).Return(&services.Outcome{Results: []entities.SearchResult{}, Skipped: true}, nil)

	w := serve(mux, "/api/search")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"query":"","content_type":"all","results":[],"count":0,"failed_types":[]}`, w.Body.String())
}

func TestSearchHandler_SearchRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"content type": "/api/search?q=x&type=polls",
		"lf_type":      "/api/search?q=x&lf_type=stolen",
		"lf_status":    "/api/search?q=x&lf_status=open",
		"date_from":    "/api/search?q=x&date_from=next-week",
		"date order":   "/api/search?q=x&date_from=2026-05-01&date_to=2026-04-01",
	}

	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			svc := new(MockSearchService)
			w := serve(newMux(handlers.NewSearchHandler(svc, nil)), target)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSearchHandler_SearchRFC3339Dates(t *testing.T) {
	svc := new(MockSearchService)
	mux := newMux(handlers.NewSearchHandler(svc, nil))
	to := time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC)

	svc.On("Search", mock.Anything, "", mock.MatchedBy(func(f entities.SearchFilters) bool {
		return f.ContentType == entities.ContentEvents && f.EventDateFrom == nil && f.EventDateTo.Equal(to)
	})).Return(&services.Outcome{Results: []entities.SearchResult{}}, nil)

	w := serve(mux, "/api/search?type=events&date_to=2026-04-30T12:00:00Z")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSearchHandler_GetResult(t *testing.T) {
	svc := new(MockSearchService)
	mux := newMux(handlers.NewSearchHandler(svc, nil))
	event := entities.NewEventResult(&entities.Event{ID: "e1", Title: "Robotics expo"})

	svc.On("Get", mock.Anything, entities.ResultEvent, "e1").Return(&event, nil)
	svc.On("Get", mock.Anything, entities.ResultEvent, "gone").Return(nil, apperrors.NewNotFoundError("event gone not found"))
	svc.On("Get", mock.Anything, entities.ResultNote, "n1").Return(nil, apperrors.NewStoreError("failed to query notes", errors.New("timeout")))

	w := serve(mux, "/api/results/event/e1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Robotics expo"`)

	assert.Equal(t, http.StatusNotFound, serve(mux, "/api/results/event/gone").Code)
	assert.Equal(t, http.StatusBadGateway, serve(mux, "/api/results/note/n1").Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, "/api/results/poll/p1").Code)
}

func TestSearchHandler_ResolveResults(t *testing.T) {
	svc := new(MockSearchService)
	mux := newMux(handlers.NewSearchHandler(svc, nil))
	refs := []entities.ResultRef{
		{Type: entities.ResultLostFound, ID: "l1"},
		{Type: entities.ResultNote, ID: "n1"},
	}
	item := entities.NewLostFoundResult(&entities.LostFoundItem{ID: "l1", Title: "Keys"})

	svc.On("Resolve", mock.Anything, refs).Return([]entities.SearchResult{item}, nil)

	w := serve(mux, "/api/results?ref=lost_found:l1&ref=note:n1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Equal(t, http.StatusBadRequest, serve(mux, "/api/results").Code)
	assert.Equal(t, http.StatusBadRequest, serve(mux, "/api/results?ref=note").Code)
	svc.AssertExpectations(t)
}

func TestSearchHandler_GetZeroResultQueries(t *testing.T) {
	analytics := new(MockAnalyticsService)
	mux := newMux(handlers.NewSearchHandler(new(MockSearchService), analytics))

	analytics.On("GetZeroResultQueries", mock.Anything, 10).Return([]*entities.SearchEvent{{Query: "underwater chess"}}, nil)

	w := serve(mux, "/api/analytics/zero-result-queries?limit=10")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "underwater chess")
	assert.Equal(t, http.StatusBadRequest, serve(mux, "/api/analytics/zero-result-queries?limit=-1").Code)

	disabled := newMux(handlers.NewSearchHandler(new(MockSearchService), nil))
	assert.Equal(t, http.StatusNotFound, serve(disabled, "/api/analytics/zero-result-queries").Code)
}

// uuidOnlyStore fails any lookup carrying a non-UUID id, as a uuid primary key does.
type uuidOnlyStore struct {
	records []entities.Record
}

func (s *uuidOnlyStore) QueryCollection(ctx context.Context, q repositories.CollectionQuery) ([]entities.Record, error) {
	ids := q.Where[0][0].Value.([]string)
	var out []entities.Record
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperrors.NewStoreError("failed to query "+q.Collection, errors.New("invalid input syntax for type uuid"))
		}
		for _, rec := range s.records {
			if rec.ID() == id {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

func TestSearchHandler_NonUUIDIDs(t *testing.T) {
	const lostKeys = "9d4b7c1a-3e2f-4a5b-8c6d-0e1f2a3b4c5d"
	store := &uuidOnlyStore{records: []entities.Record{{"id": lostKeys, "title": "Keys"}}}
	svc := services.NewSearchService(
		adapters.NewNotesAdapter(store, 0),
		adapters.NewEventsAdapter(store, 0),
		adapters.NewLostFoundAdapter(store, 0),
	)
	mux := newMux(handlers.NewSearchHandler(svc, nil))

	assert.Equal(t, http.StatusNotFound, serve(mux, "/api/results/note/abc").Code)

	w := serve(mux, "/api/results?ref=lost_found:abc&ref=lost_found:"+lostKeys+"&ref=note:xyz")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Results []map[string]interface{} `json:"results"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, lostKeys, body.Results[0]["id"])
}
