// Package api provides the JSON HTTP handlers for the coverage tracker.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"covtrack/internal/domain"
	"covtrack/internal/middleware"
	"covtrack/internal/reports"
	"covtrack/internal/service/coverage"
	"covtrack/internal/service/extract"
	"covtrack/internal/service/history"
	"covtrack/internal/service/metrics"
	"covtrack/internal/service/planning"
	"covtrack/internal/service/registry"
	"covtrack/internal/service/security"
)

// Handler bundles the services behind the /v1 JSON API.
type Handler struct {
	metrics        *metrics.Service
	metricImporter *metrics.Importer
	coverage       *coverage.Service
	covImporter    *coverage.Importer
	planning       *planning.Service
	registry       *registry.Service
	extract        *extract.Service
	history        *history.Service
	security       *security.Service
	reports        *reports.Store
	logger         *slog.Logger
}

// Deps lists everything a Handler needs.
type Deps struct {
	Metrics        *metrics.Service
	MetricImporter *metrics.Importer
	Coverage       *coverage.Service
	CovImporter    *coverage.Importer
	Planning       *planning.Service
	Registry       *registry.Service
	Extract        *extract.Service
	History        *history.Service
	Security       *security.Service
	Reports        *reports.Store
	Logger         *slog.Logger
}

// NewHandler creates a new API Handler.
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		metrics:        d.Metrics,
		metricImporter: d.MetricImporter,
		coverage:       d.Coverage,
		covImporter:    d.CovImporter,
		planning:       d.Planning,
		registry:       d.Registry,
		extract:        d.Extract,
		history:        d.History,
		security:       d.Security,
		reports:        d.Reports,
		logger:         logger.With("component", "api"),
	}
}

// MountRoutes attaches the /v1 API to the router. authSecret guards every
// route except login; admin-only routes additionally require the admin role.
func (h *Handler) MountRoutes(r chi.Router, authSecret []byte) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authSecret))

			r.Get("/stats", h.stats)

			r.Get("/metrics/categories", h.metricCategories)
			r.Get("/metrics/{variant}", h.listMetrics)
			r.Get("/metrics/{variant}/export", h.exportMetrics)
			r.Get("/metrics/{variant}/{name}", h.getMetric)
			r.Get("/metrics/{variant}/{name}/status", h.metricStatus)

			r.Get("/coverage/{variant}", h.coverageSummaries)
			r.Get("/coverage/{variant}/report", h.coverageReport)
			r.Get("/coverage/{variant}/export", h.exportCoverage)
			r.Get("/suggestions", h.suggestions)

			r.Get("/planning/{variant}", h.planningPage)

			r.Get("/engines", h.listEngines)
			r.Get("/exceptions", h.listExceptions)

			r.Post("/extract", h.extractText)
			r.Post("/extract/probes", h.extractProbesCSV)
			r.Post("/extract/rotation", h.extractRotationCSV)
			r.Get("/history", h.listHistory)

			r.Get("/reports", h.listReports)
			r.Get("/reports/{name}", h.downloadReport)

			// Mutations require the admin role.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/metrics/{variant}", h.createMetric)
				r.Patch("/metrics/{variant}/{name}", h.updateMetric)
				r.Post("/metrics/{variant}/import", h.importMetrics)

				r.Post("/coverage", h.addCoverage)
				r.Post("/coverage/import", h.importCoverage)

				r.Put("/planning/{variant}/{name}/priority", h.setPriority)
				r.Put("/planning/{variant}/{name}/notes", h.saveNotes)
				r.Post("/planning/{variant}/{name}/plans", h.addPlans)
				r.Delete("/planning/plans/{id}", h.removePlan)
				r.Post("/planning/plans/{id}/promote", h.promotePlan)

				r.Post("/engines", h.addEngine)
				r.Delete("/engines/{name}", h.removeEngine)
				r.Post("/exceptions", h.addException)
				r.Delete("/exceptions/{tcid}", h.removeException)

				r.Post("/deletions", h.softDelete)
				r.Post("/restores", h.restore)

				r.Get("/users", h.listUsers)
				r.Post("/users", h.createUser)
				r.Delete("/users/{id}", h.deleteUser)
				r.Put("/users/{id}/role", h.setUserRole)
			})
		})
	})
}

// --- response helpers ---

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := httpStatusFromDomainError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	h.writeJSON(w, status, map[string]any{
		"code":    status,
		"message": err.Error(),
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrValidation("invalid JSON body")
	}
	return nil
}

func variantParam(r *http.Request) (domain.Variant, error) {
	return domain.ParseVariant(chi.URLParam(r, "variant"))
}
