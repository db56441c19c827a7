package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"covtrack/internal/domain"
)

type planResponse struct {
	ID     int64  `json:"id"`
	Region string `json:"region"`
	Engine string `json:"engine"`
}

type planningRowResponse struct {
	MetricName  string               `json:"metric_name"`
	Category    string               `json:"category"`
	Priority    *string              `json:"priority,omitempty"`
	Notes       *string              `json:"notes,omitempty"`
	TCIDCount   int                  `json:"tc_id_count"`
	RegionCount int                  `json:"region_count"`
	EngineCount int                  `json:"engine_count"`
	Existing    []linkDetailResponse `json:"existing"`
	Planned     []planResponse       `json:"planned"`
}

func planningRowToAPI(row domain.PlanningRow) planningRowResponse {
	out := planningRowResponse{
		MetricName:  row.MetricName,
		Category:    row.Category,
		Priority:    row.Priority,
		Notes:       row.Notes,
		TCIDCount:   row.TCIDCount,
		RegionCount: row.RegionCount,
		EngineCount: row.EngineCount,
		Existing:    make([]linkDetailResponse, 0, len(row.Existing)),
		Planned:     make([]planResponse, 0, len(row.Planned)),
	}
	for _, d := range row.Existing {
		out.Existing = append(out.Existing, linkDetailToAPI(d))
	}
	for _, p := range row.Planned {
		plan := planResponse{ID: p.ID, Region: domain.NoRegion, Engine: domain.NoEngine}
		if p.Region != nil {
			plan.Region = *p.Region
		}
		if p.Engine != nil {
			plan.Engine = *p.Engine
		}
		out.Planned = append(out.Planned, plan)
	}
	return out
}

func (h *Handler) planningPage(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rows, err := h.planning.PageData(r.Context(), v)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]planningRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, planningRowToAPI(row))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"variant": string(v), "rows": out})
}

func (h *Handler) setPriority(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		Priority string `json:"priority"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.planning.SetPriority(r.Context(), chi.URLParam(r, "name"), v, req.Priority); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveNotes(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.planning.SaveNotes(r.Context(), chi.URLParam(r, "name"), v, req.Notes); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addPlans(w http.ResponseWriter, r *http.Request) {
	v, err := variantParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req struct {
		Regions []string `json:"regions"`
		Engines []string `json:"engines"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	added, err := h.planning.AddPlans(r.Context(), chi.URLParam(r, "name"), v, req.Regions, req.Engines)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"added": added})
}

func (h *Handler) removePlan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, domain.ErrValidation("invalid plan id"))
		return
	}
	if err := h.planning.RemovePlan(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) promotePlan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeError(w, domain.ErrValidation("invalid plan id"))
		return
	}
	var req struct {
		TCID  string  `json:"tc_id"`
		Title *string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.planning.Promote(r.Context(), id, req.TCID, req.Title)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"tc_id":         res.TCID,
		"link_inserted": res.LinkInserted,
		"created_root":  res.CreatedRoot,
	})
}
