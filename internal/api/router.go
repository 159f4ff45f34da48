package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homesim-core/internal/panel"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(corsMiddleware(s.cfg.CORS))
	r.Use(bodySizeLimitMiddleware)

	// Browser panel, embedded via go:embed
	r.Handle("/panel/*", http.StripPrefix("/panel", panel.Handler(s.panelDir)))
	r.Handle("/panel", http.RedirectHandler("/panel/", http.StatusMovedPermanently))
	r.Handle("/", http.RedirectHandler("/panel/", http.StatusFound))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/", s.handleCreateDevice)
			r.Get("/stats", s.handleDeviceStats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Delete("/", s.handleDeleteDevice)
				r.Get("/status", s.handleGetDeviceStatus)
				r.Post("/power", s.handleTogglePower)
				r.Put("/adjustable", s.handleUpdateAdjustable)
			})
		})

		r.Get("/activity", s.handleListActivity)
		r.Post("/activity", s.handleLogActivity)

		r.Get(s.wsPath(), s.handleWebSocket)
	})

	return r
}

// wsPath is the websocket route under /api/v1.
func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"devices": s.registry.GetDeviceCount(),
		"clients": s.hub.ClientCount(),

		"websocket_path": "/api/v1" + s.wsPath(),
	})
}
