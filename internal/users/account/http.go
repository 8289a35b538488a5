// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

/*
Package account provides the HTTP delivery layer for own-profile management.

It implements the RESTful interface for users to read and update their own
account data.

# Security

All endpoints in this package require an active authentication session provided
by the RequireAuth middleware.
*/
package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/tranminhduc/ident/internal/platform/request"
	"github.com/tranminhduc/ident/internal/platform/respond"
	"github.com/tranminhduc/ident/internal/platform/validate"
	"github.com/tranminhduc/ident/internal/users/auth"
)

// Handler implements the HTTP layer for own-profile management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Own-profile Management
	router.Get("/me", handler.getMe)
	router.Patch("/me", handler.updateMe)

	return router
}

// # Own-Profile Endpoints

/*
GET /api/v1/users/me.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: auth.User: Fully hydrated user profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), user.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// updateMeRequest defines the expected JSON payload for profile updates.
// A field absent from the payload stays nil and is left untouched.
type updateMeRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

/*
PATCH /api/v1/users/me.

Description: Applies partial updates to the authenticated user's profile.
Username and password are immutable through this endpoint.

Request:
  - body: updateMeRequest (Partial JSON)

Response:
  - 200: auth.User: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: ErrUnauthorized: Authentication required
  - 409: ErrConflict: Email already registered to another account
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	user, err := requestutil.RequiredUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	if input.Email != nil {
		v.Required(auth.FieldEmail, *input.Email).Email(auth.FieldEmail, *input.Email)
	}
	if input.FirstName != nil {
		v.MaxLen(auth.FieldFirstName, *input.FirstName, 100)
	}
	if input.LastName != nil {
		v.MaxLen(auth.FieldLastName, *input.LastName, 100)
	}

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), user.ID, auth.ProfileUpdate{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}
