// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranminhduc/ident/internal/platform/ctxkey"
	"github.com/tranminhduc/ident/internal/users/account"
	"github.com/tranminhduc/ident/internal/users/auth"
)

// asUser injects a resolved principal the way the Authenticate middleware does.
func asUser(user *auth.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ctx := context.WithValue(request.Context(), ctxkey.KeyUser, user)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

func newTestRouter(service *account.Service, principal *auth.User) chi.Router {
	router := chi.NewRouter()
	if principal != nil {
		router.Use(asUser(principal))
	}
	router.Mount("/users", account.NewHandler(service).Routes())
	return router
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Data
}

/*
TestHandler_GetMe verifies the own-profile read endpoint.
*/
func TestHandler_GetMe(t *testing.T) {
	user := fixtureUser()
	service, _ := newTestService(user)

	t.Run("authenticated", func(t *testing.T) {
		router := newTestRouter(service, user)

		request := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)
		data := decodeEnvelope(t, recorder)
		assert.Equal(t, "minhduc", data["username"])
		assert.Equal(t, "duc@ident.dev", data["email"])
	})

	t.Run("anonymous", func(t *testing.T) {
		router := newTestRouter(service, nil)

		request := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

/*
TestHandler_UpdateMe verifies partial profile updates over HTTP, including
validation and the email conflict path.
*/
func TestHandler_UpdateMe(t *testing.T) {
	patch := func(t *testing.T, router chi.Router, body string) *httptest.ResponseRecorder {
		t.Helper()
		request := httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder
	}

	t.Run("partial_update", func(t *testing.T) {
		user := fixtureUser()
		service, _ := newTestService(user)
		router := newTestRouter(service, user)

		recorder := patch(t, router, `{"first_name":"Minh"}`)
		require.Equal(t, http.StatusOK, recorder.Code)

		data := decodeEnvelope(t, recorder)
		assert.Equal(t, "Minh", data["first_name"])
		assert.Equal(t, "Tran", data["last_name"])
	})

	t.Run("invalid_email", func(t *testing.T) {
		user := fixtureUser()
		service, _ := newTestService(user)
		router := newTestRouter(service, user)

		recorder := patch(t, router, `{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("email_conflict", func(t *testing.T) {
		user := fixtureUser()
		other := &auth.User{
			ID:       "0198f6a2-2222-7000-8000-000000000002",
			Username: "someoneelse",
			Email:    "taken@ident.dev",
		}
		service, _ := newTestService(user, other)
		router := newTestRouter(service, user)

		recorder := patch(t, router, `{"email":"taken@ident.dev"}`)
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("bad_json", func(t *testing.T) {
		user := fixtureUser()
		service, _ := newTestService(user)
		router := newTestRouter(service, user)

		recorder := patch(t, router, `{"email": `)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
