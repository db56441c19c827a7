package api

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"covtrack/internal/domain"
)

func (h *Handler) listEngines(w http.ResponseWriter, r *http.Request) {
	engines, err := h.registry.Engines(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	names := make([]string, 0, len(engines))
	for _, e := range engines {
		names = append(names, e.Name)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"engines": names})
}

func (h *Handler) addEngine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.registry.AddEngine(r.Context(), req.Name); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) removeEngine(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.RemoveEngine(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listExceptions(w http.ResponseWriter, r *http.Request) {
	exceptions, err := h.registry.Exceptions(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	type exceptionResponse struct {
		TCID      string    `json:"tc_id"`
		Reason    *string   `json:"reason,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}
	out := make([]exceptionResponse, 0, len(exceptions))
	for _, e := range exceptions {
		out = append(out, exceptionResponse{TCID: e.TCID, Reason: e.Reason, CreatedAt: e.CreatedAt})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"exceptions": out})
}

func (h *Handler) addException(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TCID   string  `json:"tc_id"`
		Reason *string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	e, err := h.registry.AddException(r.Context(), req.TCID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"tc_id": e.TCID})
}

func (h *Handler) removeException(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.RemoveException(r.Context(), chi.URLParam(r, "tcid")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) extractText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.extract.Analyze(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	region, engine, err := h.extract.Rotation(r.Context(), req.Text)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"probes":  res.Probes,
		"regions": res.Regions,
		"engines": res.Engines,
		"rotation": map[string]string{
			"region": region,
			"engine": engine,
		},
	})
}

func (h *Handler) extractProbesCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.extract.AnnotateCSV(r.Context(), r.Body, &buf); err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=annotated.csv")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) extractRotationCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.extract.RotationCSV(r.Context(), r.Body, &buf); err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=rotation.csv")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.HistoryFilter{}
	if s := q.Get("username"); s != "" {
		filter.Username = &s
	}
	if s := q.Get("action"); s != "" {
		filter.Action = &s
	}
	if s := q.Get("table"); s != "" {
		filter.TableName = &s
	}
	if n, err := strconv.Atoi(q.Get("max_results")); err == nil {
		filter.Page.MaxResults = n
	}
	filter.Page.PageToken = q.Get("page_token")

	entries, total, err := h.history.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	type historyResponse struct {
		ID        string    `json:"id"`
		Username  string    `json:"username"`
		Action    string    `json:"action"`
		TableName string    `json:"table_name"`
		RecordKey string    `json:"record_key"`
		Details   *string   `json:"details,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}
	out := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyResponse{
			ID:        e.ID,
			Username:  e.Username,
			Action:    e.Action,
			TableName: e.TableName,
			RecordKey: e.RecordKey,
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"entries":         out,
		"total":           total,
		"next_page_token": domain.NextPageToken(filter.Page.Offset(), filter.Page.Limit(), total),
	})
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	files, err := h.reports.List()
	if err != nil {
		h.writeError(w, err)
		return
	}
	type reportFileResponse struct {
		Name    string    `json:"name"`
		Size    int64     `json:"size"`
		ModTime time.Time `json:"mod_time"`
	}
	out := make([]reportFileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, reportFileResponse{Name: f.Name, Size: f.Size, ModTime: f.ModTime})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"reports": out})
}

func (h *Handler) downloadReport(w http.ResponseWriter, r *http.Request) {
	f, err := h.reports.Open(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+chi.URLParam(r, "name"))
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Error("download report", "error", err)
	}
}
