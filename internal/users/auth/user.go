// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

/*
Package auth implements the user identity and token lifecycle layer.

It defines the core domain entity (User) and the logic for credential
verification, token issuance, refresh, and bearer-token resolution.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/tranminhduc/ident/internal/platform/apperr"
)

// # Domain Entities

// User represents a registered account.
type User struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenPair is the transient credential set returned to a client after a
// successful login or refresh. It is never persisted server-side — the server
// is stateless with respect to issued tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// # Domain Errors

// Every failure leaving this package is one of the values below (or an
// [apperr.Internal] wrapper for unexpected storage errors). Handlers map them
// to transport status codes via respond.Error.
var (
	// ErrInvalidCredentials unifies "identifier not found" and "wrong
	// password" so a caller cannot enumerate registered accounts.
	ErrInvalidCredentials = apperr.InvalidCredentials()

	// ErrInvalidToken covers signature and claim-shape failures.
	ErrInvalidToken = apperr.InvalidToken()

	// ErrTokenExpired marks a structurally valid token past its expiry.
	ErrTokenExpired = apperr.TokenExpired()

	// ErrUserNotFound marks a valid token whose subject no longer resolves.
	ErrUserNotFound = apperr.NotFound("User")

	// ErrDuplicateIdentity marks a registration or update that collides with
	// an existing username or email.
	ErrDuplicateIdentity = apperr.Conflict("User with this email or username already exists")
)

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldLogin        = "login"
	FieldRefreshToken = "refresh_token"
	FieldAccessToken  = "access_token"
	FieldTokenType    = "token_type"
	FieldExpiresIn    = "expires_in"
	FieldUser         = "user"
)

// # Validation Constraints

const (
	// UsernameMinLen and UsernameMaxLen bound the username length.
	UsernameMinLen = 5
	UsernameMaxLen = 50

	// PasswordMinLen and PasswordMaxLen bound the plaintext password length.
	PasswordMinLen = 5
	PasswordMaxLen = 24
)
