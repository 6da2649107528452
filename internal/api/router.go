package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pixelforge/ledmatrixd/internal/web"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Embedded control UI; index.html is self-contained
	r.Handle("/", web.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/assets", s.handleListAssets)
		r.Get("/history", s.handleListHistory)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/display", func(r chi.Router) {
			r.Post("/start", s.handleDisplayStart)
			r.Post("/stop", s.handleDisplayStop)
			r.Post("/brightness", s.handleDisplayBrightness)
		})
	})

	// WebSocket for status push
	r.Get("/ws", s.handleWebSocket)

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
