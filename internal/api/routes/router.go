package routes

import (
	"net/http"

	"github.com/campushub/portal/backend/internal/api/handlers"
	"github.com/campushub/portal/backend/internal/api/middleware"
	"github.com/campushub/portal/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler *handlers.SearchHandler
	metrics       *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(searchHandler *handlers.SearchHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		searchHandler: searchHandler,
		metrics:       metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search
	r.mux.HandleFunc("GET /api/search", r.searchHandler.Search)

	// Result lookups
	r.mux.HandleFunc("GET /api/results", r.searchHandler.ResolveResults)
	r.mux.HandleFunc("GET /api/results/{type}/{id}", r.searchHandler.GetResult)

	// Analytics
	r.mux.HandleFunc("GET /api/analytics/zero-result-queries", r.searchHandler.GetZeroResultQueries)

	// Last applied is outermost. CORS wraps everything so errors carry its headers too.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics, r.mux)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
