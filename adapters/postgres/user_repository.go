package postgres

import (
	"context"
	"database/sql"
	stderr "errors"

	"github.com/certik/femhub-notebook/domain/user"
	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UserRepositoryImpl implements UserRepository for PostgreSQL
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create stores a new account
func (r *UserRepositoryImpl) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO notebook_users (id, username, password_hash, email, email_confirmed, account_type, suspended, created_at, updated_at)
		VALUES (:id, :username, :password_hash, :email, :email_confirmed, :account_type, :suspended, :created_at, :updated_at)
	`, u)
	if err != nil {
		var pqErr *pq.Error
		if stderr.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return errors.InvalidInput("username already taken: " + u.Username)
		}
		return errors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByUsername retrieves an account by username
func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var u user.User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, username, password_hash, COALESCE(email, '') as email, email_confirmed, account_type, suspended, created_at, updated_at
		FROM notebook_users
		WHERE username = $1
	`, username)
	if err != nil {
		if stderr.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("user " + username)
		}
		return nil, errors.Wrap(err, "failed to get user")
	}
	return &u, nil
}

// Update persists changes to an existing account
func (r *UserRepositoryImpl) Update(ctx context.Context, u *user.User) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE notebook_users
		SET password_hash = :password_hash,
		    email = :email,
		    email_confirmed = :email_confirmed,
		    account_type = :account_type,
		    suspended = :suspended,
		    updated_at = :updated_at
		WHERE username = :username
	`, u)
	if err != nil {
		return errors.Wrap(err, "failed to update user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if n == 0 {
		return errors.NotFound("user " + u.Username)
	}
	return nil
}

// List returns all accounts ordered by creation time
func (r *UserRepositoryImpl) List(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	err := r.db.SelectContext(ctx, &users, `
		SELECT id, username, password_hash, COALESCE(email, '') as email, email_confirmed, account_type, suspended, created_at, updated_at
		FROM notebook_users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}
	return users, nil
}
