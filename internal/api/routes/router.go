package routes

import (
	"net/http"

	"github.com/zatekoja/tuitioncentres/backend/internal/api/handlers"
	"github.com/zatekoja/tuitioncentres/backend/internal/api/middleware"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux            *http.ServeMux
	centreHandler  *handlers.CentreHandler
	healthHandler  *handlers.HealthHandler
	metrics        *observability.Metrics
	allowedOrigins []string
}

// NewRouter creates a new router
func NewRouter(
	centreHandler *handlers.CentreHandler,
	healthHandler *handlers.HealthHandler,
	metrics *observability.Metrics,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		centreHandler:  centreHandler,
		healthHandler:  healthHandler,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	r.mux.HandleFunc("GET /api/tuition-centres", r.centreHandler.SearchCentres)
	r.mux.HandleFunc("GET /api/tuition-centres/{id}", r.centreHandler.GetCentre)
	r.mux.HandleFunc("GET /api/filter-options", r.centreHandler.FilterOptions)

	// Last applied wraps first. CORS is outermost so preflight and error
	// responses carry its headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORS(r.allowedOrigins)(handler)

	return handler
}
