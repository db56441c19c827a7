package middleware

import (
	"context"
	"net/http"

	"covtrack/internal/domain"
)

// HeaderRequestID carries the correlation id between client, server and logs.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID tags every request with a correlation id. A caller-supplied
// header wins so upstream proxies can stitch traces together; otherwise
// a fresh id is minted. The id is echoed back on the response and made
// available to handlers via RequestIDFromContext.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = domain.NewID()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), requestIDKey{}, id),
		))
	})
}

// RequestIDFromContext returns the request id, "" when the request
// never passed through RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
