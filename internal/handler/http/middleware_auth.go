// Package http implements the HTTP transport layer of the replication
// server. It provides middleware, route handlers, and request/response
// utilities for the REST API. Authentication, logging, and tracing concerns
// are all handled at this layer before requests are forwarded to the
// replication engine.
package http

import (
	"context"
	"net/http"

	"github.com/plannerhub/planner-sync/internal/logger"
	"github.com/plannerhub/planner-sync/internal/utils"
)

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// It inspects the incoming "Authorization" header, extracts the bearer token,
// validates it via [utils.ValidateAndParseJWTToken], and on success stores
// the resolved owner identifier in the request context under
// [utils.OwnerCtxKey] before delegating to the next handler.
//
// The owner identifier is opaque to this server: it is the "sub" claim of a
// token issued by the external auth collaborator. Requests that cannot be
// resolved to an owner are rejected with HTTP 401 before any storage access.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			http.Error(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		token, err := utils.ValidateAndParseJWTToken(tokenString, h.appCfg.TokenSignKey, h.appCfg.TokenIssuer)
		if err != nil {
			log.Err(err).Msg("error occurred during parsing token")
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		// Store the resolved owner in the context so downstream handlers can
		// retrieve it without re-parsing the token.
		ctx := context.WithValue(r.Context(), utils.OwnerCtxKey, token.OwnerID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
