// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// category daemon.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"localmarket/internal/handlers"
	"localmarket/internal/middleware"
)

// New creates and returns the configured Chi router. metrics may be nil,
// in which case /metrics is not mounted. refreshLimiter guards the endpoint
// that forces a network fetch.
func New(categories *handlers.Categories, metrics http.Handler, refreshLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/tree", categories.Tree)
			r.Get("/search", categories.Search)
			r.Get("/leaves", categories.Leaves)
			r.Get("/validate", categories.Validate)
			r.Get("/level/{level}", categories.Level)
			r.Get("/{id}", categories.Get)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", categories.CacheStats)
			r.Delete("/", categories.Clear)
			r.With(refreshLimiter.Middleware).Post("/refresh", categories.Refresh)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
