// Package utils provides general-purpose helper utilities used across
// different parts of the application: context keys, HTTP response writing,
// and JWT token generation and validation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// OwnerCtxKey is the key under which the authenticated owner identifier is
// stored in the request context by the auth middleware.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.OwnerCtxKey, "owner-42")
var OwnerCtxKey = contextKey("ownerID")

// GetOwnerFromContext retrieves the owner identifier from the context.
//
// Returns the owner id and an ok flag:
//   - ok == true: value is found and has the correct string type
//   - ok == false: value is missing or has an unexpected type
func GetOwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(OwnerCtxKey).(string)
	return owner, ok
}
