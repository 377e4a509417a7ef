package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes. With no JWT secret configured the middleware is
		// a pass-through, for closed-network deployments.
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Device registry
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)

				r.Route("/{ip}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Get("/users", s.handleDeviceUsers)
					r.Get("/attendance", s.handleDeviceAttendance)
				})
			})

			// Sync triggers (serialized; one fleet run at a time)
			r.Route("/sync", func(r chi.Router) {
				r.Post("/users", s.handleSyncUsers)
				r.Post("/attendance", s.handleSyncAttendance)
			})

			// Most recent fleet run outcome
			r.Get("/reports/latest", s.handleLatestReport)

			// Stored attendance counters
			r.Get("/attendance/count", s.handleAttendanceCount)

			// Live punch stream
			r.Get("/live", s.handleLive)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"devices": s.registry.Len(),
	})
}
