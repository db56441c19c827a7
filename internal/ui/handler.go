// Package ui serves the server-rendered HTML frontend.
package ui

import (
	"context"
	"errors"
	"net/http"

	gomponents "maragu.dev/gomponents"

	"covtrack/internal/domain"
	"covtrack/internal/reports"
	"covtrack/internal/service/coverage"
	"covtrack/internal/service/extract"
	"covtrack/internal/service/history"
	"covtrack/internal/service/metrics"
	"covtrack/internal/service/planning"
	"covtrack/internal/service/registry"
	"covtrack/internal/service/security"
)

type Handler struct {
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
	Production     bool
}

func renderHTML(w http.ResponseWriter, status int, node gomponents.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func principalFromContext(ctx context.Context) domain.ContextPrincipal {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.ContextPrincipal{Name: "unknown", Role: domain.RoleViewer}
	}
	return p
}

func (h *Handler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	title := "Unexpected Error"
	message := "An unexpected error occurred while loading this page."

	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	if errors.As(err, &notFound) {
		status = http.StatusNotFound
		title = "Not Found"
		message = notFound.Error()
	} else if errors.As(err, &accessDenied) {
		status = http.StatusForbidden
		title = "Access Denied"
		message = accessDenied.Error()
	} else if errors.As(err, &validation) {
		status = http.StatusBadRequest
		title = "Invalid Request"
		message = validation.Error()
	} else if errors.As(err, &conflict) {
		status = http.StatusConflict
		title = "Conflict"
		message = conflict.Error()
	}

	_ = r
	renderHTML(w, status, errorPage(title, message))
}
