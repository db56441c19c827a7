package ui

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) AdminPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	engines, err := h.Registry.Engines(ctx)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	exceptions, err := h.Registry.Exceptions(ctx)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	users, err := h.Security.ListUsers(ctx)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	d := adminPageData{CSRF: csrfField(r)}
	for _, e := range engines {
		d.Engines = append(d.Engines, e.Name)
	}
	for _, e := range exceptions {
		d.Exceptions = append(d.Exceptions, exceptionRowData{
			TCID:   e.TCID,
			Reason: strOrDash(e.Reason),
		})
	}
	for _, u := range users {
		d.Users = append(d.Users, userRowData{
			ID:       strconv.FormatInt(u.ID, 10),
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
		})
	}
	renderHTML(w, http.StatusOK, adminPage(principalFromContext(ctx), d))
}

func (h *Handler) AdminAddEngine(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	if err := h.Registry.AddEngine(r.Context(), formString(r.Form, "name")); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/admin", http.StatusSeeOther)
}

func (h *Handler) AdminRemoveEngine(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.RemoveEngine(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/admin", http.StatusSeeOther)
}

func (h *Handler) AdminAddException(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	_, err := h.Registry.AddException(r.Context(),
		formString(r.Form, "tc_id"), formOptionalString(r.Form, "reason"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/admin", http.StatusSeeOther)
}

func (h *Handler) AdminRemoveException(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.RemoveException(r.Context(), chi.URLParam(r, "tcid")); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/admin", http.StatusSeeOther)
}

func (h *Handler) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	_, err := h.Security.CreateUser(r.Context(),
		formString(r.Form, "username"),
		formString(r.Form, "email"),
		first(r.Form["password"]),
		formString(r.Form, "role"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/admin", http.StatusSeeOther)
}

func (h *Handler) AdminRemoveUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Invalid user id."))
		return
	}
	if err := h.Security.DeleteUser(r.Context(), id); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/admin", http.StatusSeeOther)
}

func (h *Handler) AdminSetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Invalid user id."))
		return
	}
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, errorPage("Invalid Request", "Unable to parse form."))
		return
	}
	if err := h.Security.SetRole(r.Context(), id, formString(r.Form, "role")); err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/ui/admin", http.StatusSeeOther)
}
