package client

import "errors"

var (
	// ErrUnauthorized means the bearer token was missing, expired, or rejected.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrUnknownCollection means the server does not replicate the collection.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrBadRequest means the server rejected the request shape.
	ErrBadRequest = errors.New("bad request")

	// ErrServer covers 5xx replies; the batch was rolled back and is safe to retry.
	ErrServer = errors.New("server error")
)
