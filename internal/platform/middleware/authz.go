// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tranminhduc/ident/internal/platform/apperr"
	"github.com/tranminhduc/ident/internal/platform/ctxkey"
	"github.com/tranminhduc/ident/internal/platform/respond"
	"github.com/tranminhduc/ident/internal/users/auth"
)

// IdentityResolver defines the interface needed to resolve bearer tokens in middleware.
//
// # Why an interface?
//
// Defining IdentityResolver here decouples the middleware from the `auth`
// resolver implementation, allowing us to easily inject mocks during unit testing.
type IdentityResolver interface {
	Resolve(ctx context.Context, bearerToken string) (*auth.User, error)
}

// Authenticate extracts and resolves the bearer token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, verify the token and load the CURRENT user record — every
//     request hits the store, so revoked accounts are cut off immediately.
//  4. Inject [*auth.User] into the request context for downstream use.
//
// # Parameters
//   - resolver: The IdentityResolver instance.
//
// # Returns
//   - An [http.Handler] middleware.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Identity Resolution ────────────────────────────────────────
			tokenStr := parts[1]
			user, err := resolver.Resolve(request.Context(), tokenStr)
			if err != nil {
				// Domain errors carry the precise code (INVALID_TOKEN,
				// TOKEN_EXPIRED, NOT_FOUND) and status for the client.
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := context.WithValue(request.Context(), ctxkey.KeyUser, user)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if [*auth.User] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		user := GetUser(request.Context())
		if user == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// GetUser retrieves the [*auth.User] from the [context.Context].
//
// # Returns
//   - A pointer to [auth.User] if the user is authenticated.
//   - nil if the user is anonymous.
func GetUser(ctx context.Context) *auth.User {
	user, ok := ctx.Value(ctxkey.KeyUser).(*auth.User)
	if !ok {
		return nil
	}
	return user
}
