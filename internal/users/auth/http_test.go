// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranminhduc/ident/internal/platform/middleware"
	"github.com/tranminhduc/ident/internal/users/auth"
)

// newTestRouter mounts the auth routes the way the composition root does,
// including the real Authenticate/RequireAuth chain around /test-token.
func newTestRouter(t *testing.T) (chi.Router, *auth.Service) {
	t.Helper()

	service, repo, codec := newTestService(t)
	resolver := auth.NewResolver(repo, codec, testPolicy)
	handler := auth.NewHandler(service)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(resolver))
	router.Mount("/auth", handler.Routes(middleware.RequireAuth))

	return router, service
}

func doJSON(t *testing.T, router chi.Router, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		request.Header.Set("Authorization", "Bearer "+bearer)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Data
}

const registerBody = `{
	"username": "minhduc",
	"email": "duc@ident.dev",
	"password": "secret-password",
	"first_name": "Duc",
	"last_name": "Tran"
}`

/*
TestHandler_Register covers the registration endpoint: creation, validation
failures, and uniqueness conflicts.
*/
func TestHandler_Register(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("created", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, "")
		require.Equal(t, http.StatusCreated, recorder.Code)

		data := decodeEnvelope(t, recorder)
		assert.Equal(t, "minhduc", data["username"])
		assert.Equal(t, "duc@ident.dev", data["email"])
		assert.NotEmpty(t, data["user_id"])

		// The hash must never leak through the JSON surface.
		assert.NotContains(t, recorder.Body.String(), "passwordhash")
		assert.NotContains(t, recorder.Body.String(), "secret-password")
	})

	t.Run("duplicate_conflict", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, "")
		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("validation_failures", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"bad_json", `{"username": `},
			{"short_username", `{"username":"abc","email":"a@b.io","password":"secret"}`},
			{"short_password", `{"username":"validname","email":"a@b.io","password":"abcd"}`},
			{"long_password", `{"username":"validname","email":"a@b.io","password":"` + strings.Repeat("x", 25) + `"}`},
			{"bad_email", `{"username":"validname","email":"nope","password":"secret"}`},
			{"missing_fields", `{}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				recorder := doJSON(t, router, http.MethodPost, "/auth/register", tt.body, "")
				assert.Equal(t, http.StatusBadRequest, recorder.Code)
			})
		}
	})
}

/*
TestHandler_Login covers the login endpoint: token issuance and the unified
401 for bad credentials.
*/
func TestHandler_Login(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/auth/register", registerBody, "")

	t.Run("success", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/login",
			`{"login":"minhduc","password":"secret-password"}`, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		data := decodeEnvelope(t, recorder)
		assert.NotEmpty(t, data["access_token"])
		assert.NotEmpty(t, data["refresh_token"])
		assert.Equal(t, "Bearer", data["token_type"])
		assert.EqualValues(t, 900, data["expires_in"])

		user, ok := data["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "minhduc", user["username"])
	})

	t.Run("by_email", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/login",
			`{"login":"duc@ident.dev","password":"secret-password"}`, "")
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("wrong_password", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/login",
			`{"login":"minhduc","password":"wrong"}`, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "INVALID_CREDENTIALS")
	})

	t.Run("unknown_user_same_response", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/login",
			`{"login":"nobody","password":"whatever"}`, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "INVALID_CREDENTIALS")
	})
}

/*
TestHandler_RefreshAndTestToken walks the full token lifecycle over HTTP:
login, probe with the access token, exchange the refresh token.
*/
func TestHandler_RefreshAndTestToken(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/auth/register", registerBody, "")

	loginRecorder := doJSON(t, router, http.MethodPost, "/auth/login",
		`{"login":"minhduc","password":"secret-password"}`, "")
	require.Equal(t, http.StatusOK, loginRecorder.Code)

	tokens := decodeEnvelope(t, loginRecorder)
	accessToken := tokens["access_token"].(string)
	refreshToken := tokens["refresh_token"].(string)

	t.Run("test_token_with_access", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/test-token", "", accessToken)
		require.Equal(t, http.StatusOK, recorder.Code)

		data := decodeEnvelope(t, recorder)
		assert.Equal(t, "minhduc", data["username"])
	})

	t.Run("test_token_without_token", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/test-token", "", "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("test_token_with_refresh_token", func(t *testing.T) {
		// A refresh token must not open protected routes.
		recorder := doJSON(t, router, http.MethodPost, "/auth/test-token", "", refreshToken)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("refresh_success", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/refresh",
			`{"refresh_token":"`+refreshToken+`"}`, "")
		require.Equal(t, http.StatusOK, recorder.Code)

		data := decodeEnvelope(t, recorder)
		assert.NotEmpty(t, data["access_token"])
		assert.NotEmpty(t, data["refresh_token"])
	})

	t.Run("refresh_with_access_token", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/refresh",
			`{"refresh_token":"`+accessToken+`"}`, "")
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "INVALID_TOKEN")
	})

	t.Run("refresh_missing_token", func(t *testing.T) {
		recorder := doJSON(t, router, http.MethodPost, "/auth/refresh", `{}`, "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
