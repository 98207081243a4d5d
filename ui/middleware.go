package ui

import (
	"context"
	"net/http"

	"github.com/certik/femhub-notebook/internal/errors"
)

type contextKey string

const userContextKey contextKey = "username"

// currentUser returns the logged-in username from the request context
func currentUser(r *http.Request) string {
	username, _ := r.Context().Value(userContextKey).(string)
	return username
}

// requireLogin resolves the session cookie and injects the username into
// the request context, redirecting anonymous requests to the login page.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, err := s.sessions.FromRequest(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin restricts a route to admin accounts. It must run inside
// requireLogin.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := currentUser(r)
		u, err := s.users.GetByUsername(r.Context(), username)
		if err != nil {
			if errors.HasCode(err, errors.CodeNotFound) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			s.logger.Error("admin check failed for %s: %v", username, err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		if !u.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
