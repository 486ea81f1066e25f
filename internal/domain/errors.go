package domain

import (
	"errors"
	"net/http"
)

// Domain errors shared across lifecycle operations. Handlers translate these
// into HTTP responses with HTTPStatus.
var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrUnauthorized     = errors.New("premium membership required")
	ErrForbidden        = errors.New("only the host may perform this action")
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrEventCancelled   = errors.New("event has been cancelled")
	ErrAlreadyAttending = errors.New("already attending this event")
	ErrStorage          = errors.New("storage failure")
	ErrNotification     = errors.New("notification delivery failure")
)

// HTTPStatus maps a domain error to its HTTP status code. ErrAlreadyAttending
// is an idempotent success for retrying clients and maps to 200.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrEventCancelled):
		return http.StatusConflict
	case errors.Is(err, ErrAlreadyAttending):
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
