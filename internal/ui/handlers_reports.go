package ui

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"covtrack/internal/domain"
)

func (h *Handler) ReportsList(w http.ResponseWriter, r *http.Request) {
	files, err := h.Reports.List()
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	rows := make([]reportRowData, 0, len(files))
	for _, f := range files {
		rows = append(rows, reportRowData{
			Name:    f.Name,
			Size:    strconv.FormatInt(f.Size, 10) + " B",
			ModTime: formatTime(f.ModTime),
		})
	}
	renderHTML(w, http.StatusOK, reportsPage(principalFromContext(r.Context()), rows))
}

func (h *Handler) ReportDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, err := h.Reports.Open(name)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	_, _ = io.Copy(w, f)
}

func (h *Handler) ActivityList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.HistoryFilter{}
	if s := q.Get("username"); s != "" {
		filter.Username = &s
	}
	if s := q.Get("action"); s != "" {
		filter.Action = &s
	}
	if n, err := strconv.Atoi(q.Get("max_results")); err == nil {
		filter.Page.MaxResults = n
	}
	filter.Page.PageToken = q.Get("page_token")

	entries, total, err := h.History.List(r.Context(), filter)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	rows := make([]activityRowData, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, activityRowData{
			Filter:    e.Username + " " + e.Action + " " + e.TableName + " " + e.RecordKey,
			Username:  e.Username,
			Action:    e.Action,
			TableName: e.TableName,
			RecordKey: e.RecordKey,
			Details:   strOrDash(e.Details),
			CreatedAt: formatTime(e.CreatedAt),
		})
	}
	renderHTML(w, http.StatusOK, activityPage(principalFromContext(r.Context()), rows, filter.Page, total))
}
