package models

import "github.com/golang-jwt/jwt/v5"

// Token wraps a parsed JWT with the owner identifier extracted from its
// "sub" claim. Owners are opaque strings; the replication engine never
// interprets them beyond scoping storage predicates.
type Token struct {
	// Token is the underlying JWT used for signing and claim inspection.
	*jwt.Token `json:"-"`

	// RegisteredClaims provides the standard JWT claim set (RFC 7519).
	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// OwnerID is the owner identifier cached from the "sub" claim.
	OwnerID string `json:"-"`
}
