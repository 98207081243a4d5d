// Package memory provides in-memory user and session repositories, used
// when the server runs without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/certik/femhub-notebook/domain/core"
	"github.com/certik/femhub-notebook/domain/user"
	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/ports"
)

// UserRepository implements ports.UserRepository in process memory
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*user.User
}

// NewUserRepository creates an empty in-memory user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*user.User)}
}

var _ ports.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; ok {
		return errors.InvalidInput("username already taken: " + u.Username)
	}
	cp := *u
	r.users[u.Username] = &cp
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	if !ok {
		return nil, errors.NotFound("user " + username)
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Username]; !ok {
		return errors.NotFound("user " + u.Username)
	}
	cp := *u
	r.users[u.Username] = &cp
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// SessionRepository implements ports.SessionRepository in process memory
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]ports.LoginSession
}

// NewSessionRepository creates an empty in-memory session repository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[core.SessionID]ports.LoginSession)}
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(ctx context.Context, s *ports.LoginSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id core.SessionID) (*ports.LoginSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || time.Now().After(s.ExpiresAt) {
		return nil, errors.NotFound("session")
	}
	cp := s
	return &cp, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id core.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, s := range r.sessions {
		if now.After(s.ExpiresAt) {
			delete(r.sessions, id)
		}
	}
	return nil
}
