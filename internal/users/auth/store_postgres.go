// Copyright (c) 2026 Ident. All rights reserved.
// Author: tran.minhduc.dev@gmail.com

// PostgreSQL implementation of the credential store.
//
// # err Mapping
//
// Storage-specific errors (pgx.ErrNoRows, SQLSTATE 23505) are mapped to the
// domain error values so nothing above this layer sees driver details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tranminhduc/ident/internal/platform/database/schema"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// accountColumns is the canonical SELECT list, derived from the schema
// definition so store queries and migrations cannot drift apart silently.
var accountColumns = strings.Join(schema.IdentityAccount.Columns(), ", ")

// scanUser hydrates a single account row.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Disabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// isUniqueViolation reports whether err is a Postgres unique-index collision.
func isUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation
}

/*
Create persists a new user record into the identity.account table.

Description: Deep-persists account metadata, ensuring timestamps are initialized
if not provided. A username/email collision maps to [ErrDuplicateIdentity].

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: ErrDuplicateIdentity, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		schema.IdentityAccount.Table, accountColumns,
	)

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Disabled,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByIdentifier retrieves a user record by email or username.

Description: A single indexed lookup serving the flexible login flow — the
caller does not need to know which kind of identifier it holds.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or database errors
*/
func (repository *PostgresUserRepository) FindByIdentifier(context context.Context, identifier string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 OR %s = $1`,
		accountColumns, schema.IdentityAccount.Table,
		schema.IdentityAccount.Email, schema.IdentityAccount.Username,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_identifier_failed: %w", err)
	}

	return user, nil
}

/*
FindByID retrieves a user record by their unique ID.

Description: Primary key resolution for user accounts.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: ErrUserNotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		accountColumns, schema.IdentityAccount.Table, schema.IdentityAccount.ID,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
UpdateFields applies a partial profile update in a single statement.

Description: COALESCE keeps stored values where the caller passed nil, so the
update is atomic — no fetch-modify-write race. An email collision maps to
[ErrDuplicateIdentity].

Parameters:
  - context: context.Context
  - id: string
  - fields: ProfileUpdate

Returns:
  - *User: The refreshed entity (RETURNING row)
  - error: ErrUserNotFound, ErrDuplicateIdentity, or execution errors
*/
func (repository *PostgresUserRepository) UpdateFields(context context.Context, id string, fields ProfileUpdate) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %[3]s = COALESCE($2, %[3]s),
		    %[4]s = COALESCE($3, %[4]s),
		    %[5]s = COALESCE($4, %[5]s),
		    %[6]s = $5
		WHERE %[7]s = $1
		RETURNING %[2]s`,
		schema.IdentityAccount.Table, accountColumns,
		schema.IdentityAccount.Email, schema.IdentityAccount.FirstName,
		schema.IdentityAccount.LastName, schema.IdentityAccount.UpdatedAt,
		schema.IdentityAccount.ID,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query,
		id,
		fields.Email,
		fields.FirstName,
		fields.LastName,
		time.Now(),
	))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("postgres_user_repo_update_fields_failed: %w", err)
	}

	return user, nil
}
