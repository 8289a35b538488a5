// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tranminhduc/ident/internal/users/auth"
)

// # Service Layer

// Service orchestrates business logic for the authenticated user's own profile.
//
// The service never accepts a target user ID from the caller — every operation
// is scoped to the principal the middleware resolved, so a user can only ever
// read or mutate their own record.
type Service struct {
	users  auth.UserRepository
	logger *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(users auth.UserRepository, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		logger: logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the current state of a user's own profile.

Description: Re-reads the store rather than echoing the middleware snapshot, so
the response reflects any concurrent modification.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: auth.ErrUserNotFound or execution failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.users.FindByID(context, userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

/*
UpdateProfile applies a partial set of changes to a user's own profile.

Description: Only the fields with non-nil pointers are written; the store's
COALESCE update keeps everything else intact without a fetch-modify-write
round trip. Changing the email to one already registered surfaces as
[auth.ErrDuplicateIdentity].

Parameters:
  - context: context.Context
  - userID: string
  - input: auth.ProfileUpdate

Returns:
  - *auth.User: The updated user profile
  - error: auth.ErrUserNotFound, auth.ErrDuplicateIdentity, or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input auth.ProfileUpdate) (*auth.User, error) {
	user, err := service.users.UpdateFields(context, userID, input)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrDuplicateIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))

	return user, nil
}
