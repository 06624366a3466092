// Package handler provides the HTTP handlers for the Sales Tracker API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/salestracker/internal/repository"
)

// Router assembles the HTTP routing for the Sales Tracker API.
type Router struct {
	authHandler    *AuthHandler
	saleHandler    *SaleHandler
	authMiddleware func(http.Handler) http.Handler
	db             repository.DatabaseHealth
	maxBodySize    int64
	instrument     func(http.Handler) http.Handler
	logger         zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	SaleHandler    *SaleHandler
	AuthMiddleware func(http.Handler) http.Handler
	DB             repository.DatabaseHealth
	MaxBodySize    int64
	// Instrumentation is an optional middleware applied to every request,
	// used to record request metrics.
	Instrumentation func(http.Handler) http.Handler
	Logger          zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	return &Router{
		authHandler:    config.AuthHandler,
		saleHandler:    config.SaleHandler,
		authMiddleware: config.AuthMiddleware,
		db:             config.DB,
		maxBodySize:    config.MaxBodySize,
		instrument:     config.Instrumentation,
		logger:         config.Logger.With().Str("component", "router").Logger(),
	}
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(rt.logger))
	if rt.instrument != nil {
		r.Use(rt.instrument)
	}
	if rt.maxBodySize > 0 {
		r.Use(MaxBodySize(rt.maxBodySize))
	}

	r.Get("/health", rt.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register/", rt.authHandler.Register)
		r.Post("/auth/login/", rt.authHandler.Login)
		r.Post("/auth/refresh/", rt.authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware)

			r.Post("/auth/verify/", rt.authHandler.Verify)
			r.Get("/auth/profile/", rt.authHandler.Profile)

			r.Get("/sales/", rt.saleHandler.List)
			r.Post("/sales/create/", rt.saleHandler.Create)
			r.Get("/sales/statistics/", rt.saleHandler.Statistics)
			r.Get("/sales/{id}/", rt.saleHandler.Get)
			r.Put("/sales/{id}/update/", rt.saleHandler.Update)
			r.Patch("/sales/{id}/update/", rt.saleHandler.Update)
			r.Delete("/sales/{id}/delete/", rt.saleHandler.Delete)
		})
	})

	return r
}

// handleHealth reports service liveness and database reachability.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := rt.db.Health(ctx); err != nil {
		rt.logger.Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
