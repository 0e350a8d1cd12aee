package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/rwy-watch/pkg/logger"
)

// Router is the API router
type Router struct {
	handler     *Handler
	middleware  *Middleware
	corsOrigins []string
	logger      *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(handler *Handler, corsOrigins []string, log *logger.Logger) *Router {
	return &Router{
		handler:     handler,
		middleware:  NewMiddleware(log),
		corsOrigins: corsOrigins,
		logger:      log.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.corsOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		// Runway configuration routes
		router.Get("/runways", r.handler.GetAllRunwayConfigs)
		router.Get("/runways/{airport}", r.handler.GetRunwayConfigByAirport)
		router.Get("/runways/{airport}/history", r.handler.GetRunwayConfigHistory)

		// Review workflow routes
		router.Get("/reviews", r.handler.GetPendingReviews)
		router.Post("/reviews/{id}", r.handler.SubmitReview)

		// Health check
		router.Get("/health", r.handler.GetHealth)

		// Service status
		router.Get("/status", r.handler.GetStatus)
	})

	return router
}
