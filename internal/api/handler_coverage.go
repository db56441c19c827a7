package api

import (
	"fmt"
	"net/http"
	"strconv"

	"covtrack/internal/domain"
	"covtrack/internal/service/coverage"
)

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.coverage.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"glean_metrics":      stats.TotalGleanMetrics,
		"legacy_metrics":     stats.TotalLegacyMetrics,
		"glean_covered_tcs":  stats.GleanCoveredTCs,
		"legacy_covered_tcs": stats.LegacyCoveredTCs,
	})
}

func (h *Handler) addCoverage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TCID    string   `json:"tc_id"`
		Title   *string  `json:"title"`
		Variant string   `json:"variant"`
		Metrics []string `json:"metrics"`
		Regions []string `json:"regions"`
		Engines []string `json:"engines"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	v, err := domain.ParseVariant(req.Variant)
	if err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.coverage.AddEntry(r.Context(), coverage.AddEntryInput{
		TCID:    req.TCID,
		Title:   req.Title,
		Variant: v,
		Metrics: req.Metrics,
		Regions: req.Regions,
		Engines: req.Engines,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"tc_id":           res.TCID,
		"inserted":        res.Inserted,
		"duplicates":      res.Duplicates,
		"skipped_metrics": res.SkippedMetrics,
		"message":         res.Message,
	})
}

func (h *Handler) coverageSummaries(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	sums, err := h.coverage.Summaries(r.Context(), v)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]coverageResponse, 0, len(sums))
	for _, mc := range sums {
		out = append(out, coverageToAPI(mc))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"coverage": out})
}

func (h *Handler) coverageReport(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rows, err := h.coverage.ReportData(r.Context(), v)
	if err != nil {
		h.writeError(w, err)
		return
	}
	type reportRow struct {
		MetricName string `json:"metric_name"`
		TCIDCount  int64  `json:"tc_id_count"`
	}
	out := make([]reportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, reportRow{MetricName: row.MetricName, TCIDCount: row.TCIDCount})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"variant": string(v), "rows": out})
}

func (h *Handler) exportCoverage(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s_coverage.csv", v))
	if err := h.coverage.Export(r.Context(), v, w); err != nil {
		h.logger.Error("export coverage", "error", err)
	}
}

func (h *Handler) importCoverage(w http.ResponseWriter, r *http.Request) {
	file, err := uploadedCSV(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer file.Close()

	report, err := h.covImporter.Import(r.Context(), file)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, importReportToAPI(report))
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sugg, err := h.coverage.Suggestions(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	type suggestion struct {
		TCID  string  `json:"tc_id"`
		Title *string `json:"title,omitempty"`
	}
	out := make([]suggestion, 0, len(sugg))
	for _, s := range sugg {
		out = append(out, suggestion{TCID: s.TCID, Title: s.Title})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"suggestions": out})
}

func (h *Handler) softDelete(w http.ResponseWriter, r *http.Request) {
	target, err := deleteTargetFromRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.coverage.SoftDelete(r.Context(), target); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	target, err := deleteTargetFromRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.coverage.Restore(r.Context(), target); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func deleteTargetFromRequest(r *http.Request) (domain.SoftDeleteTarget, error) {
	var req struct {
		Kind string `json:"kind"`
		Key  string `json:"key"`
	}
	if err := decodeJSON(r, &req); err != nil {
		return domain.SoftDeleteTarget{}, err
	}
	kind, err := domain.ParseSoftDeleteKind(req.Kind)
	if err != nil {
		return domain.SoftDeleteTarget{}, err
	}
	return domain.SoftDeleteTarget{Kind: kind, Key: req.Key}, nil
}
