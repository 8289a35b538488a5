// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranminhduc/ident/internal/platform/sec"
	"github.com/tranminhduc/ident/internal/users/auth"
	"github.com/tranminhduc/ident/pkg/pointer"
)

// # Test Fixtures

// memoryUserRepository is an in-memory [auth.UserRepository] used to exercise
// the service and resolver without a database.
type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*auth.User // keyed by ID
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*auth.User)}
}

func (repo *memoryUserRepository) Create(_ context.Context, user *auth.User) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, existing := range repo.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return auth.ErrDuplicateIdentity
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	repo.users[user.ID] = &clone
	return nil
}

func (repo *memoryUserRepository) FindByIdentifier(_ context.Context, identifier string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, user := range repo.users {
		if user.Email == identifier || user.Username == identifier {
			clone := *user
			return &clone, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (repo *memoryUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, found := repo.users[id]
	if !found {
		return nil, auth.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (repo *memoryUserRepository) UpdateFields(_ context.Context, id string, fields auth.ProfileUpdate) (*auth.User, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, found := repo.users[id]
	if !found {
		return nil, auth.ErrUserNotFound
	}

	if fields.Email != nil {
		for otherID, other := range repo.users {
			if otherID != id && other.Email == *fields.Email {
				return nil, auth.ErrDuplicateIdentity
			}
		}
		user.Email = *fields.Email
	}
	user.FirstName = pointer.Fallback(fields.FirstName, user.FirstName)
	user.LastName = pointer.Fallback(fields.LastName, user.LastName)
	user.UpdatedAt = time.Now()

	clone := *user
	return &clone, nil
}

// delete removes a user directly, simulating out-of-band account removal.
func (repo *memoryUserRepository) delete(id string) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.users, id)
}

var testPolicy = auth.TokenPolicy{
	AccessKey:  []byte("access-test-key"),
	RefreshKey: []byte("refresh-test-key"),
	AccessTTL:  15 * time.Minute,
	RefreshTTL: 60 * time.Minute,
}

func newTestService(t *testing.T) (*auth.Service, *memoryUserRepository, *sec.TokenCodec) {
	t.Helper()

	codec, err := sec.NewTokenCodec("HS256")
	require.NoError(t, err)

	repo := newMemoryUserRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return auth.NewService(repo, codec, testPolicy, logger), repo, codec
}

func registerTestUser(t *testing.T, service *auth.Service) *auth.User {
	t.Helper()

	user, err := service.Register(context.Background(), auth.RegisterInput{
		Username: "minhduc",
		Email:    "duc@ident.dev",
		Password: "secret-password",
	})
	require.NoError(t, err)
	return user
}

// # Registration

/*
TestService_Register verifies the happy path: password is hashed, account is
enabled, and the record is retrievable afterwards.
*/
func TestService_Register(t *testing.T) {
	service, repo, _ := newTestService(t)

	user := registerTestUser(t, service)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "minhduc", user.Username)
	assert.False(t, user.Disabled)

	// The stored hash must not be the plaintext.
	assert.NotEqual(t, "secret-password", user.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("secret-password", user.PasswordHash))

	stored, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, stored.Username)
}

/*
TestService_Register_Duplicate verifies that username and email collisions
surface as the recoverable conflict error.
*/
func TestService_Register_Duplicate(t *testing.T) {
	service, _, _ := newTestService(t)
	registerTestUser(t, service)

	tests := []struct {
		name  string
		input auth.RegisterInput
	}{
		{"same_username", auth.RegisterInput{Username: "minhduc", Email: "other@ident.dev", Password: "pass1"}},
		{"same_email", auth.RegisterInput{Username: "someoneelse", Email: "duc@ident.dev", Password: "pass2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := service.Register(context.Background(), tt.input)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, auth.ErrDuplicateIdentity)
		})
	}
}

// # Authentication

/*
TestService_Authenticate verifies login by username and by email, and that
unknown identifiers and wrong passwords are indistinguishable.
*/
func TestService_Authenticate(t *testing.T) {
	service, _, _ := newTestService(t)
	registered := registerTestUser(t, service)

	t.Run("by_username", func(t *testing.T) {
		user, err := service.Authenticate(context.Background(), "minhduc", "secret-password")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("by_email", func(t *testing.T) {
		user, err := service.Authenticate(context.Background(), "duc@ident.dev", "secret-password")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("unknown_identifier", func(t *testing.T) {
		user, err := service.Authenticate(context.Background(), "nobody", "secret-password")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("wrong_password", func(t *testing.T) {
		user, err := service.Authenticate(context.Background(), "minhduc", "wrong-password")
		assert.Nil(t, user)

		// The two failure modes must be the same error so callers cannot
		// enumerate registered accounts.
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

/*
TestService_Login verifies that a successful login yields a decodable pair
bound to the correct keys.
*/
func TestService_Login(t *testing.T) {
	service, _, codec := newTestService(t)
	registered := registerTestUser(t, service)

	loggedIn, pair, err := service.Login(context.Background(), "minhduc", "secret-password")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, registered.ID, loggedIn.ID)

	// Access token decodes under the access key and carries the user ID.
	accessClaims, err := codec.Decode(pair.AccessToken, testPolicy.AccessKey)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, accessClaims.Subject)

	// Refresh token decodes under the refresh key only.
	refreshClaims, err := codec.Decode(pair.RefreshToken, testPolicy.RefreshKey)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, refreshClaims.Subject)

	_, err = codec.Decode(pair.RefreshToken, testPolicy.AccessKey)
	assert.Error(t, err)
}

// # Refresh

/*
TestService_Refresh verifies the full refresh contract: key separation,
expiry handling, subject re-resolution, and the absence of rotation.
*/
func TestService_Refresh(t *testing.T) {
	service, repo, codec := newTestService(t)
	registered := registerTestUser(t, service)

	_, pair, err := service.Login(context.Background(), "minhduc", "secret-password")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		fresh, err := service.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		require.NotNil(t, fresh)

		claims, err := codec.Decode(fresh.AccessToken, testPolicy.AccessKey)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.Subject)
	})

	t.Run("old_refresh_token_stays_valid", func(t *testing.T) {
		// No rotation: the token used above must still be exchangeable.
		again, err := service.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		assert.NotNil(t, again)
	})

	t.Run("access_token_rejected", func(t *testing.T) {
		// An access token is signed with a different key and must not be
		// accepted as a refresh token.
		fresh, err := service.Refresh(context.Background(), pair.AccessToken)
		assert.Nil(t, fresh)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("garbage_rejected", func(t *testing.T) {
		fresh, err := service.Refresh(context.Background(), "not-a-token")
		assert.Nil(t, fresh)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired_rejected", func(t *testing.T) {
		expired, err := codec.Issue(registered.ID, -1*time.Minute, testPolicy.RefreshKey)
		require.NoError(t, err)

		fresh, err := service.Refresh(context.Background(), expired)
		assert.Nil(t, fresh)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("unknown_subject", func(t *testing.T) {
		orphan, err := codec.Issue("0198f6a2-0000-7000-8000-000000000000", time.Minute, testPolicy.RefreshKey)
		require.NoError(t, err)

		fresh, err := service.Refresh(context.Background(), orphan)
		assert.Nil(t, fresh)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("deleted_subject", func(t *testing.T) {
		// A structurally valid token whose account has since been removed.
		repo.delete(registered.ID)
		defer func() {
			// Re-create for any later subtests.
			clone := *registered
			repo.users[registered.ID] = &clone
		}()

		fresh, err := service.Refresh(context.Background(), pair.RefreshToken)
		assert.Nil(t, fresh)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}
