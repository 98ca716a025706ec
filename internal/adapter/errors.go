package adapter

import "errors"

// Sentinel errors returned by [ServerAdapter] implementations. HTTP statuses
// are mapped to them by mapHTTPError.
var (
	// ErrBadRequest corresponds to HTTP 400.
	ErrBadRequest = errors.New("bad request")
	// ErrUnauthorized corresponds to HTTP 401.
	ErrUnauthorized = errors.New("client unauthorized")
	// ErrForbidden corresponds to HTTP 403.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound corresponds to HTTP 404.
	ErrNotFound = errors.New("not found")
	// ErrConflict corresponds to HTTP 409.
	ErrConflict = errors.New("conflict")
	// ErrInternalServerError corresponds to HTTP 500.
	ErrInternalServerError = errors.New("internal server error")
	// ErrBadGateway corresponds to HTTP 502.
	ErrBadGateway = errors.New("bad gateway")

	// ErrNoToken is returned by UserID before a token has been set.
	ErrNoToken = errors.New("no api token")
)
