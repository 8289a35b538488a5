// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

// HTTP delivery layer for the authentication lifecycle.
//
// # Architecture
//
// The handler acts as a thin mediation layer between the web and domain services:
//   - Protocol: Standard RESTful JSON interface.
//   - Verification: Enforces strict input validation before passing to [Service].
//
// This layer is strictly responsible for transport concerns (status codes, headers, JSON).

package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tranminhduc/ident/internal/platform/apperr"
	"github.com/tranminhduc/ident/internal/platform/ctxkey"
	"github.com/tranminhduc/ident/internal/platform/respond"
	"github.com/tranminhduc/ident/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the user lifecycle entry points (Registration, Login,
// Token Refresh) plus the access-token probe endpoint.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// The protect middleware is injected by the composition root so this package
// stays below the middleware layer in the import graph.
//
// # Endpoints
//   - POST /register   : Creates a new account.
//   - POST /login      : Authenticates and returns a token pair.
//   - POST /refresh    : Exchanges a refresh token for a new pair.
//   - POST /test-token : Returns the current user if the access token is valid.
func (handler *Handler) Routes(protect func(http.Handler) http.Handler) chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(protect)
		r.Post("/test-token", handler.testToken)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// decodeJSON reads the request body into target, normalizing decode failures.
func decodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input and persists a new user profile. Uniqueness
collisions surface as 409 straight from the store's unique indexes.

Request:
  - Body: registerRequest (Username, Email, Password, FirstName, LastName)

Response:
  - 201: User: Created user profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := decodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLen).
		MaxLen(FieldUsername, input.Username, UsernameMaxLen).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLen).
		MaxLen(FieldPassword, input.Password, PasswordMaxLen)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username:  input.Username,
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and issues a token pair.

POST /api/v1/auth/login

Description: Verifies credentials against the store and returns signed access
and refresh tokens. The server keeps no session state for them.

Request:
  - Body: loginRequest (Login, Password)

Response:
  - 200: TokenPair plus token metadata
  - 401: ErrInvalidCredentials: Unknown identifier or wrong password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := decodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, pair, err := handler.authService.Login(request.Context(), input.Login, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldAccessToken:  pair.AccessToken,
		FieldRefreshToken: pair.RefreshToken,
		FieldTokenType:    "Bearer",
		FieldExpiresIn:    handler.authService.policy.AccessTTL / time.Second,
		FieldUser:         user,
	})
}

/*
Refresh issues a new token pair using a valid refresh token.

POST /api/v1/auth/refresh

Description: Decodes the refresh token under the refresh key, checks expiry,
re-resolves the subject, and returns a fresh pair. The old refresh token stays
valid until its own expiry (no rotation).

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: TokenPair: New access and refresh tokens
  - 401: ErrInvalidToken / ErrTokenExpired
  - 404: ErrUserNotFound: Token subject no longer exists
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := decodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "is required"))
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
TestToken proves that the presented access token is valid.

POST /api/v1/auth/test-token

Description: Returns the resolved user — the request only reaches this handler
if the identity resolver accepted the bearer token.

Response:
  - 200: User: The authenticated principal
  - 401: ErrUnauthorized: Missing, invalid, or expired token
*/
func (handler *Handler) testToken(writer http.ResponseWriter, request *http.Request) {
	user, ok := request.Context().Value(ctxkey.KeyUser).(*User)
	if !ok || user == nil {
		respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
		return
	}

	respond.OK(writer, user)
}
