package routes

import (
	"net/http"

	"github.com/zatekoja/doctordiscovery/internal/api/handlers"
	"github.com/zatekoja/doctordiscovery/internal/api/middleware"
	"github.com/zatekoja/doctordiscovery/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	triageHandler *handlers.TriageHandler
	doctorHandler *handlers.DoctorHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	triageHandler *handlers.TriageHandler,
	doctorHandler *handlers.DoctorHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		triageHandler: triageHandler,
		doctorHandler: doctorHandler,
		metrics:       metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Triage endpoints
	r.mux.HandleFunc("POST /api/triage", r.triageHandler.Triage)
	r.mux.HandleFunc("POST /api/conversation/state", r.triageHandler.AnalyzeConversation)

	// Doctor endpoints
	r.mux.HandleFunc("GET /api/doctors", r.doctorHandler.ListDoctors)
	r.mux.HandleFunc("POST /api/doctors/sort", r.doctorHandler.SortDoctors)
	r.mux.HandleFunc("GET /api/doctors/search", r.doctorHandler.SearchDoctors)
	r.mux.HandleFunc("GET /api/doctors/stats", r.doctorHandler.GetPoolStats)

	// Admin endpoints
	r.mux.HandleFunc("POST /api/admin/pool/refresh", r.doctorHandler.RefreshPool)

	// Middleware wraps in reverse order; CORS is outermost so even error
	// responses carry the headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
