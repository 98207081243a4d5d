package ui

import (
	"net/http"

	"github.com/certik/femhub-notebook/domain/core"
	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/internal/session"
)

// handleLoginPage renders the login form
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := s.pageContext("")
	data["Error"] = ""
	s.renderTemplate(w, "login.html", data)
}

// handleLogin checks the submitted credentials and issues a session.
// Failed logins re-render the form with a generic error so the page does
// not leak which of the two fields was wrong.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	u, err := s.users.GetByUsername(r.Context(), username)
	if err != nil && !errors.HasCode(err, errors.CodeNotFound) {
		s.logger.Error("login lookup failed: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if err != nil || u.Suspended || !u.CheckPassword(password) {
		data := s.pageContext("")
		data["Error"] = "Invalid username or password"
		w.WriteHeader(http.StatusUnauthorized)
		s.renderLoginError(w, data)
		return
	}

	id, err := s.sessions.Issue(r.Context(), username)
	if err != nil {
		s.logger.Error("failed to issue session: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	s.sessions.SetCookie(w, id)
	http.Redirect(w, r, "/home/"+username, http.StatusSeeOther)
}

// renderLoginError writes the login page body after the status header has
// already been sent.
func (s *Server) renderLoginError(w http.ResponseWriter, data map[string]interface{}) {
	if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
		s.logger.Error("template error for login.html: %v", err)
	}
}

// handleLogout revokes the session and clears the cookie
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(session.CookieName); err == nil {
		if err := s.sessions.Revoke(r.Context(), core.SessionID(c.Value)); err != nil {
			s.logger.Warn("failed to revoke session: %v", err)
		}
	}
	s.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
