// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tranminhduc/ident/internal/platform/apperr"
	"github.com/tranminhduc/ident/internal/platform/ctxutil"
	"github.com/tranminhduc/ident/internal/platform/validate"
	"github.com/tranminhduc/ident/internal/users/auth"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
User extracts the authenticated user from the request context.

Returns nil if the request is not authenticated.
*/
func User(request *http.Request) *auth.User {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredUser ensures the request is authenticated and returns the user.

Returns:
  - *auth.User: The authenticated user record
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredUser(request *http.Request) (*auth.User, error) {

	// Get resolved user
	user := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if user == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return user, nil
}
