package postgres

import (
	"context"
	"database/sql"
	stderr "errors"

	"github.com/certik/femhub-notebook/domain/core"
	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/ports"

	"github.com/jmoiron/sqlx"
)

// SessionRepositoryImpl implements SessionRepository for PostgreSQL
type SessionRepositoryImpl struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionRepository {
	return &SessionRepositoryImpl{db: db}
}

// Create stores a new session
func (r *SessionRepositoryImpl) Create(ctx context.Context, s *ports.LoginSession) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO login_sessions (id, username, expires_at, created_at)
		VALUES (:id, :username, :expires_at, :created_at)
	`, s)
	if err != nil {
		return errors.Wrap(err, "failed to create session")
	}
	return nil
}

// Get retrieves a session by token; expired sessions are not returned
func (r *SessionRepositoryImpl) Get(ctx context.Context, id core.SessionID) (*ports.LoginSession, error) {
	var s ports.LoginSession
	err := r.db.GetContext(ctx, &s, `
		SELECT id, username, expires_at, created_at
		FROM login_sessions
		WHERE id = $1 AND expires_at > NOW()
	`, id)
	if err != nil {
		if stderr.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("session")
		}
		return nil, errors.Wrap(err, "failed to get session")
	}
	return &s, nil
}

// Delete removes a session (logout)
func (r *SessionRepositoryImpl) Delete(ctx context.Context, id core.SessionID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM login_sessions WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteExpired sweeps out sessions past their expiry
func (r *SessionRepositoryImpl) DeleteExpired(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM login_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return errors.Wrap(err, "failed to sweep sessions")
	}
	return nil
}
