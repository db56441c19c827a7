package ui

import (
	"net/http"
	"strings"
	"time"

	"covtrack/internal/domain"
	"covtrack/internal/middleware"
)

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, loginPage(strings.TrimSpace(r.URL.Query().Get("error"))))
}

func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/ui/login?error=invalid+form", http.StatusSeeOther)
		return
	}

	token, _, err := h.Security.Login(r.Context(),
		formString(r.Form, "username"), first(r.Form["password"]))
	if err != nil {
		http.Redirect(w, r, "/ui/login?error=invalid+username+or+password", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(24 * time.Hour),
	})
	http.Redirect(w, r, "/ui", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Production,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/ui/login", http.StatusSeeOther)
}

// RedirectToLogin is the auth failure handler for browser routes.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/ui") {
		http.Redirect(w, r, "/ui/login", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusUnauthorized)
}

// requireAdmin guards mutating UI routes. The role comes from the session
// token on every request.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := domain.PrincipalFromContext(r.Context())
		if !ok || !p.IsAdmin() {
			renderHTML(w, http.StatusForbidden, errorPage("Access Denied", "This action requires the admin role."))
			return
		}
		next.ServeHTTP(w, r)
	})
}
