package api

import (
	"context"
	"net/http"
	"time"

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
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.handleListSensors)
			r.Get("/{id}", s.handleGetSensor)
		})

		r.Post("/scan", s.handleTriggerScan)
	})

	return r
}

// HealthStatus is the health summary response.
type HealthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

// handleHealth reports overall health plus per-component checks.
//
// The bus probe talks to owserver, so it gets a short timeout to keep the
// endpoint responsive when the bus hangs.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "ok"

	if s.bus != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.bus.Ping(ctx); err != nil {
			checks["owserver"] = "unreachable"
			status = "degraded"
		} else {
			checks["owserver"] = "ok"
		}
	}

	if s.mqtt != nil {
		if s.mqtt.IsConnected() {
			checks["mqtt"] = "ok"
		} else {
			checks["mqtt"] = "disconnected"
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, HealthStatus{
		Status:  status,
		Version: s.version,
		Checks:  checks,
	})
}
