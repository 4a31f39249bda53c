package handler

import (
	"errors"
	"net/http"

	"github.com/tutor-radar/internal/domain"
)

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotSaved):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrStore):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnparseable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// httpError writes err with the status its domain class maps to.
func httpError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
