package ideas

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"net/http"
)

// Catalog error kinds. Every error returned by System matches exactly one of
// these through errors.Is.
var (
	ErrInvalidInput = errors.New("invalid idea")
	ErrDuplicate    = errors.New("this idea already exists")
	ErrNotFound     = errors.New("no ideas available")
	ErrUnavailable  = errors.New("idea store unavailable")
	ErrUnknown      = errors.New("idea store failure")
)

// Store results. Engines return these and the catalog translates them.
var (
	ErrConflict = errors.New("idea key already stored")
	ErrEmpty    = errors.New("idea store is empty")
)

// MapHTTPStatus maps catalog errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsUnavailable reports whether err means the store could not be reached
// or did not answer in time.
func IsUnavailable(err error) bool {
	switch {
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
