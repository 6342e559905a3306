package api

import (
	"errors"
	"net/http"

	"itemvault/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
// Malformed request bodies are handled before a domain error exists and map
// to 400 directly; domain-level validation of a well-formed payload is 422.
func httpStatusFromDomainError(err error) int {
	var unauthenticated *domain.UnauthenticatedError
	var accessDenied *domain.AccessDeniedError
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var tooExpensive *domain.QueryTooExpensiveError
	var unavailable *domain.UnavailableError

	switch {
	case errors.As(err, &unauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &tooExpensive):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
