// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

package auth

import (
	"context"
)

// # Credential Store

// ProfileUpdate is the partial set of mutable profile fields. A nil pointer
// leaves the stored value untouched. Password changes are out of scope here —
// the hash is written only at registration.
type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// UserRepository defines the data access contract for user accounts.
//
// # Uniqueness
//
// Global uniqueness of username and email is enforced HERE (unique indexes),
// not by the service layer. Create and UpdateFields surface a collision as
// [ErrDuplicateIdentity] rather than a raw driver error.
type UserRepository interface {

	/*
		FindByIdentifier returns the account whose email OR username equals
		the given identifier.

		Parameters:
		  - context: context.Context
		  - identifier: string (email or username)

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database retrieval failures
	*/
	FindByIdentifier(context context.Context, identifier string) (*User, error)

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: ErrDuplicateIdentity on a unique-index collision, or
		    persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdateFields applies a partial profile update and returns the
		refreshed record.

		Parameters:
		  - context: context.Context
		  - id: string
		  - fields: ProfileUpdate

		Returns:
		  - *User: Updated entity
		  - error: ErrUserNotFound, ErrDuplicateIdentity (email collision),
		    or persistence failures
	*/
	UpdateFields(context context.Context, id string, fields ProfileUpdate) (*User, error)
}
