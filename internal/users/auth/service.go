// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tranminhduc/ident/internal/platform/apperr"
	"github.com/tranminhduc/ident/internal/platform/sec"
	"github.com/tranminhduc/ident/pkg/uuid"
)

// # Contracts & Types

// TokenPolicy is the immutable signing configuration injected at construction.
//
// # Key Separation
//
// AccessKey and RefreshKey are independent secrets. Decoding a token under the
// wrong key always fails, which is the mechanism that prevents a refresh token
// from being accepted as an access token and vice versa.
type TokenPolicy struct {
	AccessKey  []byte
	RefreshKey []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed carefully.
//
// # State
//
// Service holds no mutable state — every call is independent, so concurrent
// requests need no coordination beyond what the store provides.
type Service struct {
	users  UserRepository
	codec  *sec.TokenCodec
	policy TokenPolicy
	logger *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(users UserRepository, codec *sec.TokenCodec, policy TokenPolicy, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		codec:  codec,
		policy: policy,
		logger: logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

/*
Register hashes the password and persists a brand new user account.

Description: Uniqueness of username/email is NOT pre-checked here — the store's
unique indexes are the single authority, and a collision surfaces as the
recoverable [ErrDuplicateIdentity]. This avoids the check-then-insert race.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: ErrDuplicateIdentity or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Disabled:     false,
	}

	if err := service.users.Create(context, user); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	service.logger.Info("user_registered", slog.String("user_id", user.ID))

	return user, nil
}

// # Authentication Flow

/*
Authenticate verifies an identifier/password pair against the store.

Description: The identifier matches either email or username. An unknown
identifier and a wrong password both return [ErrInvalidCredentials] — the two
cases are deliberately indistinguishable to prevent account enumeration.

Parameters:
  - context: context.Context
  - identifier: string (email or username)
  - password: string

Returns:
  - *User: The matching account
  - error: ErrInvalidCredentials or storage failures
*/
func (service *Service) Authenticate(context context.Context, identifier, password string) (*User, error) {
	user, err := service.users.FindByIdentifier(context, identifier)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth_service_lookup_failed: %w", err)
	}

	// Bcrypt comparison is constant-time with respect to the hash.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

/*
IssueTokenPair creates a fresh access/refresh token pair for the user.

Description: Both tokens carry subject = user.ID and nothing else. They differ
only in TTL and signing key.

Parameters:
  - user: *User

Returns:
  - *TokenPair: Signed access and refresh tokens
  - error: Signing failures
*/
func (service *Service) IssueTokenPair(user *User) (*TokenPair, error) {
	accessToken, err := service.codec.Issue(user.ID, service.policy.AccessTTL, service.policy.AccessKey)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.codec.Issue(user.ID, service.policy.RefreshTTL, service.policy.RefreshKey)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

/*
Login combines credential verification and token issuance.

Parameters:
  - context: context.Context
  - identifier: string
  - password: string

Returns:
  - *User: The authenticated account
  - *TokenPair: Fresh credentials
  - error: ErrInvalidCredentials or issuance failures
*/
func (service *Service) Login(context context.Context, identifier, password string) (*User, *TokenPair, error) {
	user, err := service.Authenticate(context, identifier, password)
	if err != nil {
		return nil, nil, err
	}

	pair, err := service.IssueTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))

	return user, pair, nil
}

// # Token Refresh

/*
Refresh exchanges a valid refresh token for a brand new token pair.

Description: The refresh token is decoded under the REFRESH key, its expiry is
checked against the current clock, and the subject is re-resolved against the
store before a new pair is issued.

# Known Limitation

The prior refresh token is NOT invalidated — there is no rotation or blacklist,
so old and new refresh tokens both remain valid until their own expiry. This is
deliberate, documented behavior, not a bug.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: New access and refresh tokens
  - error: ErrInvalidToken, ErrTokenExpired, ErrUserNotFound, or issuance failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := service.codec.Decode(refreshToken, service.policy.RefreshKey)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Expiry is the caller's responsibility by codec design; check immediately.
	if !claims.ExpiresAt.After(time.Now()) {
		return nil, ErrTokenExpired
	}

	user, err := service.users.FindByID(context, claims.Subject)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	pair, err := service.IssueTokenPair(user)
	if err != nil {
		return nil, err
	}

	service.logger.Info("token_pair_refreshed", slog.String("user_id", user.ID))

	return pair, nil
}
