// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/tranminhduc/ident/internal/platform/apperr"
	"github.com/tranminhduc/ident/internal/platform/sec"
)

// # Identity Resolution

// Resolver turns a bearer access token into the authenticated user record.
//
// # Gate Semantics
//
// Resolve is the single gate every protected operation passes through. It
// performs no caching: every call re-verifies the signature and re-queries
// the store, so a deleted account is locked out as soon as its row is gone.
//
// A disabled-but-existing account still resolves — the disabled flag is not
// enforced at this layer. That is current behavior, carried intentionally.
type Resolver struct {
	users     UserRepository
	codec     *sec.TokenCodec
	accessKey []byte
}

// NewResolver constructs a [Resolver] bound to the ACCESS signing key.
func NewResolver(users UserRepository, codec *sec.TokenCodec, policy TokenPolicy) *Resolver {
	return &Resolver{
		users:     users,
		codec:     codec,
		accessKey: policy.AccessKey,
	}
}

/*
Resolve validates a bearer token and loads the current user.

Parameters:
  - context: context.Context
  - bearerToken: string (raw access token, without the "Bearer " prefix)

Returns:
  - *User: The authenticated principal
  - error: ErrInvalidToken, ErrTokenExpired, ErrUserNotFound, or storage failures
*/
func (resolver *Resolver) Resolve(context context.Context, bearerToken string) (*User, error) {
	claims, err := resolver.codec.Decode(bearerToken, resolver.accessKey)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !claims.ExpiresAt.After(time.Now()) {
		return nil, ErrTokenExpired
	}

	user, err := resolver.users.FindByID(context, claims.Subject)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth_resolver_lookup_failed: %w", err)
	}

	return user, nil
}
