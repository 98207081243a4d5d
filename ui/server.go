package ui

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/certik/femhub-notebook/internal/config"
	"github.com/certik/femhub-notebook/internal/log"
	"github.com/certik/femhub-notebook/internal/session"
	"github.com/certik/femhub-notebook/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Server is the notebook web application
type Server struct {
	router    *chi.Mux
	templates *template.Template
	cfg       config.NotebookConfig
	store     ports.WorksheetStore
	users     ports.UserRepository
	sessions  *session.Manager
	logger    *log.Logger
}

// NewServer wires the notebook UI over its storage and session layers
func NewServer(cfg config.NotebookConfig, store ports.WorksheetStore, users ports.UserRepository, sessions *session.Manager) (*Server, error) {
	funcMap := template.FuncMap{
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
		"safeJS":   func(s string) template.JS { return template.JS(s) },
		"lower":    strings.ToLower,
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    chi.NewRouter(),
		templates: templates,
		cfg:       cfg,
		store:     store,
		users:     users,
		sessions:  sessions,
		logger:    log.NewDefault("ui"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// ServeHTTP makes the server usable as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	staticFS := http.FileServer(http.FS(embeddedFiles))
	s.router.Handle("/static/*", staticFS)
}

func (s *Server) setupRoutes() {
	s.router.Get("/login", s.handleLoginPage)
	s.router.Post("/login", s.handleLogin)
	s.router.Get("/logout", s.handleLogout)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireLogin)

		r.Get("/", s.handleIndex)
		r.Get("/home/{user}", s.handleWorksheetList)
		r.Post("/new_worksheet", s.handleNewWorksheet)
		r.Get("/home/{user}/{id}/", s.handleWorksheetPage)
		r.Get("/home/{user}/{id}", s.handleWorksheetPage)
		r.Post("/home/{user}/{id}/save", s.handleWorksheetSave)
		r.Post("/home/{user}/{id}/delete", s.handleWorksheetDelete)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/admin/report", s.handleAdminReport)
			r.Get("/admin/report.xlsx", s.handleAdminReportXLSX)
		})
	})
}
