// Package middleware provides HTTP middleware for authentication, request
// IDs, and rate limiting.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"covtrack/internal/domain"
)

// SessionCookieName carries the session JWT for browser clients.
const SessionCookieName = "covtrack_session"

// Auth validates the session JWT from the Authorization header or the
// session cookie and stores the principal in the request context.
// Requests without a valid token get 401.
func Auth(secret []byte) func(http.Handler) http.Handler {
	return AuthWithFailure(secret, func(w http.ResponseWriter, r *http.Request) {
		writeUnauthorized(w)
	})
}

// AuthWithFailure is Auth with a custom handler for requests that carry no
// valid token. The HTML UI uses it to redirect to the login page.
func AuthWithFailure(secret []byte, onFailure http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := principalFromToken(tokenFromRequest(r), secret)
			if !ok {
				onFailure(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireAdmin rejects requests whose principal is not an admin. It must
// run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := domain.PrincipalFromContext(r.Context())
		if !ok {
			writeUnauthorized(w)
			return
		}
		if !p.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"code":    http.StatusForbidden,
				"message": "admin role required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

func principalFromToken(tokenStr string, secret []byte) (domain.ContextPrincipal, bool) {
	if tokenStr == "" {
		return domain.ContextPrincipal{}, false
	}
	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.ContextPrincipal{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.ContextPrincipal{}, false
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.ContextPrincipal{}, false
	}
	role, _ := claims["role"].(string)
	if !domain.ValidRole(role) {
		role = domain.RoleViewer
	}
	return domain.ContextPrincipal{Name: sub, Role: role}, true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    http.StatusUnauthorized,
		"message": "unauthorized: provide a valid session token",
	})
}
