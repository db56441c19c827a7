package ui

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// Double-submit cookie scheme: the token lives in an HttpOnly cookie and
// must be echoed back in the csrf_token form field or X-CSRF-Token header
// on every mutating request.
const csrfCookieName = "covtrack_csrf"

type csrfContextKey struct{}

// EnsureCSRFToken guarantees every UI request carries a CSRF cookie,
// minting one on first contact and stashing it in the request context
// so forms can embed it without re-reading the cookie jar.
func (h *Handler) EnsureCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := readCSRFCookie(r)
		if token == "" {
			token = randomToken(32)
			http.SetCookie(w, &http.Cookie{
				Name:     csrfCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.Production,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), csrfContextKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCSRF rejects mutating requests whose submitted token does not
// match the cookie. Safe methods pass through untouched.
func (h *Handler) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		cookieToken := readCSRFCookie(r)
		submitted := submittedCSRFToken(r)

		switch {
		case cookieToken == "":
			renderHTML(w, http.StatusForbidden, errorPage("CSRF Validation Failed", "Missing CSRF token cookie."))
		case subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) != 1:
			renderHTML(w, http.StatusForbidden, errorPage("CSRF Validation Failed", "Invalid or missing CSRF token."))
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// submittedCSRFToken pulls the client's token from the header first, then
// the form body. Multipart forms are parsed too since the CSV upload
// pages post the token alongside the file.
func submittedCSRFToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get("X-CSRF-Token")); tok != "" {
		return tok
	}
	_ = r.ParseMultipartForm(32 << 20)
	_ = r.ParseForm()
	return strings.TrimSpace(r.Form.Get("csrf_token"))
}

func csrfField(r *http.Request) gomponents.Node {
	token, _ := r.Context().Value(csrfContextKey{}).(string)
	if token == "" {
		token = readCSRFCookie(r)
	}
	return html.Input(
		html.Type("hidden"),
		html.Name("csrf_token"),
		html.Value(token),
	)
}

func readCSRFCookie(r *http.Request) string {
	c, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}

func randomToken(size int) string {
	if size < 16 {
		size = 16
	}
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
