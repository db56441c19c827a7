package ui

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) PlanningList(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	rows, err := h.Planning.PageData(r.Context(), v)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	renderHTML(w, http.StatusOK, planningPage(principalFromContext(r.Context()), v, rows, csrfField(r)))
}

func (h *Handler) PlanningSetPriority(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	if err := h.Planning.SetPriority(r.Context(), name, v, formString(r.Form, "priority")); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/planning/"+string(v), http.StatusSeeOther)
}

func (h *Handler) PlanningSaveNotes(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	if err := h.Planning.SaveNotes(r.Context(), name, v, formString(r.Form, "notes")); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/planning/"+string(v), http.StatusSeeOther)
}

func (h *Handler) PlanningAddPlan(w http.ResponseWriter, r *http.Request) {
	v, err := uiVariant(r)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	name := chi.URLParam(r, "name")
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	_, err = h.Planning.AddPlans(r.Context(), name, v,
		formList(r.Form, "regions"), formList(r.Form, "engines"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/planning/"+string(v), http.StatusSeeOther)
}

func (h *Handler) PlanningRemovePlan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Invalid plan id."))
		return
	}
	if err := h.Planning.RemovePlan(r.Context(), id); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, backOrDefault(r, "/ui/planning/glean"), http.StatusSeeOther)
}

func (h *Handler) PlanningPromote(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Invalid plan id."))
		return
	}
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	tcid := formString(r.Form, "tc_id")
	if _, err := h.Planning.Promote(r.Context(), id, tcid, formOptionalString(r.Form, "title")); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, backOrDefault(r, "/ui/planning/glean"), http.StatusSeeOther)
}

func backOrDefault(r *http.Request, fallback string) string {
	if back := formString(r.Form, "back"); back != "" {
		return back
	}
	return fallback
}
