package api

import (
	"errors"
	"net/http"

	"covtrack/internal/domain"
)

// httpStatusFromDomainError translates the service layer's error taxonomy
// into HTTP statuses. Unknown errors are reported as 500 and their detail
// kept out of the response body.
func httpStatusFromDomainError(err error) int {
	var (
		notFound   *domain.NotFoundError
		denied     *domain.AccessDeniedError
		validation *domain.ValidationError
		conflict   *domain.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &denied):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
