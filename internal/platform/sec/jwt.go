// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via constructor injection.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Codec Errors

var (
	// ErrInvalidSignature is returned when a token's signature does not verify
	// under the supplied key, or the token structure cannot be parsed at all.
	ErrInvalidSignature = errors.New("sec: token signature could not be verified")

	// ErrMalformedClaims is returned when a token parses and verifies, but its
	// payload does not carry the expected claim shape (subject + expiry).
	ErrMalformedClaims = errors.New("sec: token claims have an unexpected shape")

	// ErrUnsupportedAlgorithm is returned at construction time when the
	// configured signing algorithm is not in the HMAC family.
	ErrUnsupportedAlgorithm = errors.New("sec: signing algorithm must be HMAC-based (HS256/HS384/HS512)")
)

// TokenClaims is the fixed, validated payload carried by every Ident token.
//
// # Shape
//
// Exactly two claims are embedded: the subject (user ID) and the absolute
// expiry. No issuer, audience, or token-type discriminator exists — access
// and refresh tokens share this shape and differ only by signing key.
type TokenClaims struct {
	// Subject is the user ID the token was issued for.
	Subject string

	// ExpiresAt is the absolute instant after which the token must be rejected.
	ExpiresAt time.Time
}

// TokenCodec signs and verifies compact JWT strings using a symmetric
// HMAC-family algorithm.
//
// # Expiry Policy
//
// [TokenCodec.Decode] deliberately does NOT enforce expiry. Callers compare
// [TokenClaims.ExpiresAt] against their own clock, so each call site owns its
// leeway policy and can report expiry as a distinct error kind.
type TokenCodec struct {
	method jwt.SigningMethod
	parser *jwt.Parser
}

// NewTokenCodec constructs a codec for the named HMAC algorithm (e.g. "HS256").
func NewTokenCodec(algorithm string) (*TokenCodec, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedAlgorithm, algorithm)
	}

	// Claims validation is disabled so that expired tokens still decode.
	// Expiry enforcement belongs to the caller (see TokenCodec doc).
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	return &TokenCodec{method: method, parser: parser}, nil
}

// Algorithm returns the JWT "alg" identifier the codec signs with.
func (codec *TokenCodec) Algorithm() string {
	return codec.method.Alg()
}

/*
Issue creates a signed token for the given subject.

Description: Pure function of its inputs and the current clock. The embedded
claims are exactly {sub: subject, exp: now + timeToLive}.

Parameters:
  - subject: string (User ID)
  - timeToLive: time.Duration
  - signingKey: []byte

Returns:
  - string: Compact signed JWT
  - error: Signing failures
*/
func (codec *TokenCodec) Issue(subject string, timeToLive time.Duration, signingKey []byte) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(timeToLive)),
	}

	token := jwt.NewWithClaims(codec.method, claims)
	signedToken, err := token.SignedString(signingKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

/*
Decode parses and verifies a token string under the given key.

Description: Verifies the signature and extracts the fixed claim shape. Expiry
is NOT checked here — the caller compares ExpiresAt against its clock.

Parameters:
  - tokenString: string
  - signingKey: []byte

Returns:
  - *TokenClaims: Validated subject + expiry
  - error: ErrInvalidSignature or ErrMalformedClaims
*/
func (codec *TokenCodec) Decode(tokenString string, signingKey []byte) (*TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := codec.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	// The signature verified; the payload must still match the fixed shape.
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformedClaims
	}

	return &TokenClaims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
