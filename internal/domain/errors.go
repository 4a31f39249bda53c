package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrUnparseable  = errors.New("unparseable")
	ErrStore        = errors.New("store error")
	// ErrNotSaved means the step's input was accepted but the resulting write
	// failed. Callers retry the write, not the input.
	ErrNotSaved = errors.New("not saved")
)
