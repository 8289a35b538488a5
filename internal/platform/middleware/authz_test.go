// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tranminhduc/ident/internal/platform/middleware"
	"github.com/tranminhduc/ident/internal/users/auth"
)

// stubResolver maps known tokens to users, everything else to an error.
type stubResolver struct {
	tokens map[string]*auth.User
}

func (resolver *stubResolver) Resolve(_ context.Context, bearerToken string) (*auth.User, error) {
	user, found := resolver.tokens[bearerToken]
	if !found {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

// echoUserHandler writes 200 and records the user it saw in context.
func echoUserHandler(captured **auth.User) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*captured = middleware.GetUser(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestAuthenticate covers header parsing and context injection: anonymous
requests pass through, valid tokens attach the user, bad tokens abort.
*/
func TestAuthenticate(t *testing.T) {
	knownUser := &auth.User{ID: "user-123", Username: "minhduc"}
	resolver := &stubResolver{tokens: map[string]*auth.User{"good-token": knownUser}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   *auth.User
	}{
		{"anonymous_passes_through", "", http.StatusOK, nil},
		{"valid_bearer_token", "Bearer good-token", http.StatusOK, knownUser},
		{"case_insensitive_scheme", "bearer good-token", http.StatusOK, knownUser},
		{"invalid_token", "Bearer bad-token", http.StatusUnauthorized, nil},
		{"malformed_header", "good-token", http.StatusUnauthorized, nil},
		{"wrong_scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *auth.User
			handler := middleware.Authenticate(resolver)(echoUserHandler(&seen))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser, seen)
			}
		})
	}
}

/*
TestRequireAuth verifies the gate blocks anonymous requests and admits
authenticated ones.
*/
func TestRequireAuth(t *testing.T) {
	knownUser := &auth.User{ID: "user-123"}
	resolver := &stubResolver{tokens: map[string]*auth.User{"good-token": knownUser}}

	var seen *auth.User
	handler := middleware.Authenticate(resolver)(middleware.RequireAuth(echoUserHandler(&seen)))

	t.Run("anonymous_blocked", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("authenticated_admitted", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer good-token")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, knownUser, seen)
	})
}
