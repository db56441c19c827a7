package ui

import (
	"net/http"

	"covtrack/internal/domain"
	"covtrack/internal/service/coverage"
)

func (h *Handler) CoverageList(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	sums, err := h.Coverage.Summaries(r.Context(), v)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	rows := make([]coverageRowData, 0, len(sums))
	for _, mc := range sums {
		row := coverageRowData{
			Filter:      mc.MetricName,
			MetricName:  mc.MetricName,
			TCIDCount:   mc.TCIDCount,
			RegionCount: mc.RegionCount,
			EngineCount: mc.EngineCount,
		}
		for _, d := range mc.Details {
			row.Details = append(row.Details, linkRowData{
				LinkID: d.LinkID,
				TCID:   d.TCID,
				Title:  strOrDash(d.Title),
				Region: derefOr(d.Region, domain.NoRegion),
				Engine: derefOr(d.Engine, domain.NoEngine),
			})
		}
		rows = append(rows, row)
	}
	renderHTML(w, http.StatusOK, coverageListPage(principalFromContext(r.Context()), v, rows, csrfField(r)))
}

func (h *Handler) CoverageReport(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	report, err := h.Coverage.ReportData(r.Context(), v)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, coverageReportPage(principalFromContext(r.Context()), v, report))
}

func (h *Handler) CoverageNew(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	engines, err := h.Registry.Engines(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	names := make([]string, 0, len(engines))
	for _, e := range engines {
		names = append(names, e.Name)
	}
	renderHTML(w, http.StatusOK, coverageNewPage(principalFromContext(r.Context()), v, names, csrfField(r)))
}

func (h *Handler) CoverageCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	v, err := domain.ParseVariant(formString(r.Form, "variant"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	res, err := h.Coverage.AddEntry(r.Context(), coverage.AddEntryInput{
		TCID:    formString(r.Form, "tc_id"),
		Title:   formOptionalString(r.Form, "title"),
		Variant: v,
		Metrics: formList(r.Form, "metrics"),
		Regions: formList(r.Form, "regions"),
		Engines: r.Form["engines"],
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, coverageResultPage(principalFromContext(r.Context()), v, res))
}

func (h *Handler) CoverageImport(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Choose a CSV file to import."))
		return
	}
	defer file.Close()

	report, err := h.CovImporter.Import(r.Context(), file)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, importResultPage(principalFromContext(r.Context()),
		"coverage", "Coverage import", report))
}

func (h *Handler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	h.applyDeletion(w, r, true)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	h.applyDeletion(w, r, false)
}

func (h *Handler) applyDeletion(w http.ResponseWriter, r *http.Request, deleted bool) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	kind, err := domain.ParseSoftDeleteKind(formString(r.Form, "kind"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	target := domain.SoftDeleteTarget{Kind: kind, Key: formString(r.Form, "key")}

	if deleted {
		err = h.Coverage.SoftDelete(r.Context(), target)
	} else {
		err = h.Coverage.Restore(r.Context(), target)
	}
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	back := formString(r.Form, "back")
	if back == "" {
		back = "/ui"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
