// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport-layer client of the notes service.
//
// The primary abstraction is [ServerAdapter], which decouples syncers and
// services from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrNotFound] for 404, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/go-resty/resty/v2"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines communication with the home notes service.
// Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel values
// defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer token that will be attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// UserID returns the user id carried in the subject of the current token.
	// Returns [ErrNoToken] when no token is set.
	UserID() (string, error)

	// BaseURL returns the normalised home service URL, without a trailing
	// slash.
	BaseURL() string

	// Get performs an authenticated GET of path relative to BaseURL and
	// decodes the JSON response into out. A nil out discards the body.
	Get(ctx context.Context, path string, out any) error

	// Post performs an authenticated POST of body (JSON) to path and decodes
	// the JSON response into out. A nil out discards the body.
	Post(ctx context.Context, path string, body any, out any) error

	// SetAuthHeaders attaches the home service credentials to req and
	// returns it. It lets other transports (e.g. a download client) reuse the
	// same authentication.
	SetAuthHeaders(req *resty.Request) *resty.Request
}
