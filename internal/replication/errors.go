package replication

import "errors"

// Sentinel errors returned by the pull and push handlers. Callers should use
// [errors.Is] to match against these values; the HTTP layer maps them to
// client-error status codes.
var (
	// ErrNoOwner is returned when an operation is attempted without a
	// resolved owner identifier. Surfaced before any storage access.
	ErrNoOwner = errors.New("no owner was provided")

	// ErrUnknownCollection is returned when the requested collection has no
	// registered binding.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrBadCheckpoint is returned when a client-supplied checkpoint
	// timestamp cannot be parsed.
	ErrBadCheckpoint = errors.New("malformed checkpoint")

	// ErrMissingKey is returned when a push row's new document state lacks
	// the collection's key field or the key is not a string.
	ErrMissingKey = errors.New("push row is missing the document key")

	// ErrInvalidKey is returned when a push row's key fails collection-level
	// validation (e.g. the items collection requires UUID keys).
	ErrInvalidKey = errors.New("push row has an invalid document key")

	// ErrMalformedAssumedState is returned when a row's claimed prior state
	// is present but structurally unusable. Treated as a validation error,
	// never as a conflict.
	ErrMalformedAssumedState = errors.New("malformed assumed master state")

	// ErrConcurrentWrite is returned by a binding's Apply when another
	// writer's commit landed on one of the batch keys after the conflict
	// scan. Nothing is written; the push handler re-runs the scan so the
	// interleaved state surfaces as a regular conflict.
	ErrConcurrentWrite = errors.New("stored state changed since the conflict check")
)
