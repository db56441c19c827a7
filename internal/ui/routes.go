package ui

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"covtrack/internal/ui/assets"
)

func MountRoutes(r chi.Router, h *Handler, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.LoginSubmit)
	r.Post("/logout", h.Logout)

	staticFS, err := fs.Sub(assets.StaticFS(), "static")
	if err == nil {
		r.Handle("/static/*", http.StripPrefix("/ui/static/", http.FileServer(http.FS(staticFS))))
	}

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(h.EnsureCSRFToken)

		r.Get("/", h.Home)
		r.Get("/metrics/{variant}", h.MetricsList)
		r.Get("/coverage/{variant}", h.CoverageList)
		r.Get("/coverage/{variant}/report", h.CoverageReport)
		r.Get("/planning/{variant}", h.PlanningList)
		r.Get("/extract", h.ExtractPage)
		r.Get("/reports", h.ReportsList)
		r.Get("/reports/{name}", h.ReportDownload)
		r.Get("/activity", h.ActivityList)

		// Mutations: CSRF-checked and admin-only.
		r.Group(func(r chi.Router) {
			r.Use(h.RequireCSRF)
			r.Post("/extract", h.ExtractSubmit)

			r.Group(func(r chi.Router) {
				r.Use(h.requireAdmin)

				r.Get("/metrics/{variant}/new", h.MetricsNew)
				r.Post("/metrics/{variant}", h.MetricsCreate)
				r.Get("/metrics/{variant}/{name}/edit", h.MetricsEdit)
				r.Post("/metrics/{variant}/{name}/update", h.MetricsUpdate)
				r.Post("/metrics/{variant}/import", h.MetricsImport)

				r.Get("/coverage/{variant}/new", h.CoverageNew)
				r.Post("/coverage", h.CoverageCreate)
				r.Post("/coverage/import", h.CoverageImport)
				r.Post("/deletions", h.SoftDelete)
				r.Post("/restores", h.Restore)

				r.Post("/planning/{variant}/{name}/priority", h.PlanningSetPriority)
				r.Post("/planning/{variant}/{name}/notes", h.PlanningSaveNotes)
				r.Post("/planning/{variant}/{name}/plans", h.PlanningAddPlan)
				r.Post("/planning/plans/{id}/remove", h.PlanningRemovePlan)
				r.Post("/planning/plans/{id}/promote", h.PlanningPromote)

				r.Get("/admin", h.AdminPage)
				r.Post("/admin/engines", h.AdminAddEngine)
				r.Post("/admin/engines/{name}/remove", h.AdminRemoveEngine)
				r.Post("/admin/exceptions", h.AdminAddException)
				r.Post("/admin/exceptions/{tcid}/remove", h.AdminRemoveException)
				r.Post("/admin/users", h.AdminCreateUser)
				r.Post("/admin/users/{id}/remove", h.AdminRemoveUser)
				r.Post("/admin/users/{id}/role", h.AdminSetUserRole)
			})
		})
	})
}
