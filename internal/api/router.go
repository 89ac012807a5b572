package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/ringext-core/internal/coordinator"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/cycle", s.handleCycle)
		r.Get("/diagnostics", s.handleDiagnostics)
		r.Post("/refresh", s.handleRefresh)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Get("/firmware", s.handleDeviceFirmware)
			})
		})

		r.Route("/firmware", func(r chi.Router) {
			r.Get("/changes", s.handleFirmwareChanges)
			r.Get("/changelog", s.handleFirmwareChangelog)
			r.Get("/summary", s.handleFirmwareSummary)
		})
	})

	return r
}

// handleHealth reports the server version and the coordinator health.
// The top-level status is "degraded" whenever the coordinator is not
// healthy; the HTTP status stays 200 so probes can read the body.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := s.coord.Health()
	status := "ok"
	if health.Status != coordinator.StatusHealthy {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      status,
		"version":     s.version,
		"entry_id":    s.coord.EntryID(),
		"coordinator": health,
	})
}
