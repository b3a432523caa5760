// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"log/slog"
	"net/http"

	"blueprint/internal/app"
	"blueprint/internal/metrics"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth      *app.AuthService
	projects  *app.ProjectService
	tasks     *app.TaskService
	assistant *app.AssistantService

	logger  *slog.Logger
	metrics *metrics.Metrics
	sso     *SSO
	webDir  string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics instruments requests and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithSSO enables the single sign-on routes.
func WithSSO(sso *SSO) Option {
	return func(s *Server) { s.sso = sso }
}

// WithWebDir serves a single-page frontend from dir.
func WithWebDir(dir string) Option {
	return func(s *Server) { s.webDir = dir }
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, projects *app.ProjectService, tasks *app.TaskService, assistant *app.AssistantService, opts ...Option) *Server {
	s := &Server{
		auth:      auth,
		projects:  projects,
		tasks:     tasks,
		assistant: assistant,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", s.handleHealth)

	api.HandleFunc("/register", s.handleRegister)
	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/auth/config", s.handleAuthConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.Handle("/user/profile", s.requireAuth(s.handleProfile))

	api.Handle("/projects", s.requireAuth(s.handleProjects))
	api.Handle("/projects/{id}", s.requireAuth(s.handleProject))
	api.Handle("/projects/{id}/tasks", s.requireAuth(s.handleProjectTasks))
	api.Handle("/projects/{id}/flow", s.requireAuth(s.handleProjectFlow))
	api.Handle("/tasks/{id}", s.requireAuth(s.handleTask))

	api.Handle("/assistant/suggestion", s.requireAuth(s.handleSuggestion))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", s.instrument(withNoCache(api))))
	if s.metrics != nil {
		root.Handle("GET /metrics", s.metrics.Handler())
	}
	if s.webDir != "" {
		root.Handle("/", spaFromDisk(s.webDir))
	} else {
		root.HandleFunc("/{$}", s.handleBanner)
	}

	return s.loggingMiddleware(withCORS(root))
}
