// Package session issues and resolves login sessions, carried in a
// browser cookie and backed by a SessionRepository.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/certik/femhub-notebook/domain/core"
	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/ports"

	"github.com/google/uuid"
)

// CookieName is the browser cookie holding the session token
const CookieName = "nb_session"

// DefaultLifetime is how long a login stays valid without re-authentication
const DefaultLifetime = 24 * time.Hour

// Manager issues, resolves and revokes login sessions
type Manager struct {
	repo     ports.SessionRepository
	lifetime time.Duration
}

// NewManager creates a session manager over the given repository
func NewManager(repo ports.SessionRepository) *Manager {
	return &Manager{repo: repo, lifetime: DefaultLifetime}
}

// Issue creates a session for username and returns the token
func (m *Manager) Issue(ctx context.Context, username string) (core.SessionID, error) {
	id := core.SessionID(uuid.NewString())
	now := time.Now()
	s := &ports.LoginSession{
		ID:        id,
		Username:  username,
		ExpiresAt: now.Add(m.lifetime),
		CreatedAt: now,
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return "", errors.Wrap(err, "failed to issue session")
	}
	return id, nil
}

// Resolve returns the username behind a token
func (m *Manager) Resolve(ctx context.Context, id core.SessionID) (string, error) {
	s, err := m.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.Username, nil
}

// Revoke deletes a session (logout)
func (m *Manager) Revoke(ctx context.Context, id core.SessionID) error {
	return m.repo.Delete(ctx, id)
}

// Sweep removes expired sessions; intended to run periodically
func (m *Manager) Sweep(ctx context.Context) error {
	return m.repo.DeleteExpired(ctx)
}

// SetCookie writes the session cookie on a response
func (m *Manager) SetCookie(w http.ResponseWriter, id core.SessionID) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.lifetime.Seconds()),
	})
}

// ClearCookie expires the session cookie on a response
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// FromRequest resolves the username for a request's session cookie
func (m *Manager) FromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", errors.Unauthorized("not logged in")
	}
	return m.Resolve(r.Context(), core.SessionID(c.Value))
}
