package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"covtrack/internal/domain"
)

type metricResponse struct {
	Name           string    `json:"name"`
	Variant        string    `json:"variant"`
	Category       string    `json:"category"`
	Expiration     *string   `json:"expiration,omitempty"`
	Description    *string   `json:"description,omitempty"`
	SearchMetric   bool      `json:"search_metric"`
	CrossReference *string   `json:"cross_reference,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func metricToAPI(m domain.Metric) metricResponse {
	return metricResponse{
		Name:           m.Name,
		Variant:        string(m.Variant),
		Category:       m.Category,
		Expiration:     m.Expiration,
		Description:    m.Description,
		SearchMetric:   m.SearchMetric,
		CrossReference: m.CrossReference,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (h *Handler) listMetrics(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	list, err := h.metrics.List(r.Context(), v)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]metricResponse, 0, len(list))
	for _, m := range list {
		out = append(out, metricToAPI(m))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"metrics": out})
}

func (h *Handler) getMetric(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	m, err := h.metrics.Get(r.Context(), chi.URLParam(r, "name"), v)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, metricToAPI(*m))
}

func (h *Handler) createMetric(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		Name           string  `json:"name"`
		Category       string  `json:"category"`
		Expiration     *string `json:"expiration"`
		Description    *string `json:"description"`
		SearchMetric   bool    `json:"search_metric"`
		CrossReference *string `json:"cross_reference"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	m, err := h.metrics.Add(r.Context(), &domain.Metric{
		Name:           req.Name,
		Variant:        v,
		Category:       req.Category,
		Expiration:     req.Expiration,
		Description:    req.Description,
		SearchMetric:   req.SearchMetric,
		CrossReference: req.CrossReference,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, metricToAPI(*m))
}

func (h *Handler) updateMetric(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		Category       *string `json:"category"`
		Expiration     *string `json:"expiration"`
		Description    *string `json:"description"`
		SearchMetric   *bool   `json:"search_metric"`
		CrossReference *string `json:"cross_reference"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	patch := domain.MetricPatch{
		Category:       req.Category,
		Expiration:     req.Expiration,
		Description:    req.Description,
		SearchMetric:   req.SearchMetric,
		CrossReference: req.CrossReference,
	}
	m, err := h.metrics.Update(r.Context(), chi.URLParam(r, "name"), v, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, metricToAPI(*m))
}

func (h *Handler) metricCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.metrics.Categories(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (h *Handler) metricStatus(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	status, err := h.coverage.MetricStatus(r.Context(), chi.URLParam(r, "name"), v)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"metric":   metricToAPI(status.Metric),
		"coverage": coverageToAPI(status.Coverage),
	})
}

func (h *Handler) importMetrics(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	file, err := uploadedCSV(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer file.Close()

	report, err := h.metricImporter.Import(r.Context(), v, file)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, importReportToAPI(report))
}

func (h *Handler) exportMetrics(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s_metrics.csv", v))
	if err := h.metrics.Export(r.Context(), v, w); err != nil {
		h.logger.Error("export metrics", "error", err)
	}
}
