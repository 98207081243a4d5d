package ports

import (
	"context"
	"time"

	"github.com/certik/femhub-notebook/domain/core"
)

// LoginSession is one issued login token
type LoginSession struct {
	ID        core.SessionID `db:"id"`
	Username  string         `db:"username"`
	ExpiresAt time.Time      `db:"expires_at"`
	CreatedAt time.Time      `db:"created_at"`
}

// SessionRepository defines the interface for login session storage
type SessionRepository interface {
	// Create stores a new session
	Create(ctx context.Context, s *LoginSession) error

	// Get retrieves a session by token; expired sessions are not returned
	Get(ctx context.Context, id core.SessionID) (*LoginSession, error)

	// Delete removes a session (logout)
	Delete(ctx context.Context, id core.SessionID) error

	// DeleteExpired sweeps out sessions past their expiry
	DeleteExpired(ctx context.Context) error
}
