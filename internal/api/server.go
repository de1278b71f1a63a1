// Package api provides the HTTP server and handlers for the sync protocol.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pagemarkapp/pagemark-server/internal/http/response"
	"github.com/pagemarkapp/pagemark-server/internal/ratelimit"
	"github.com/pagemarkapp/pagemark-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService *service.AuthService
	syncService *service.SyncService
	limiter     *ratelimit.KeyedRateLimiter
	router      *chi.Mux
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(authService *service.AuthService, syncService *service.SyncService, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Server {
	s := &Server{
		authService: authService,
		syncService: syncService,
		limiter:     limiter,
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Auth-User", "X-Auth-Key"},
	}))
}

// setupRoutes configures all HTTP routes. Paths and payload shapes follow
// the KOReader sync protocol.
func (s *Server) setupRoutes() {
	s.router.Get("/healthcheck", s.handleHealthCheck)

	// Registration and the credential check carry fresh credentials, so
	// both are throttled per client address. The throttle runs before the
	// key hash is ever computed.
	s.router.With(s.rateLimit).Post("/users/create", s.handleRegister)
	s.router.With(s.rateLimit, s.requireAuth).Get("/users/auth", s.handleAuthCheck)

	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/syncs/progress/{document}", s.handleGetProgress)
		r.Put("/syncs/progress", s.handleUpdateProgress)

		r.Get("/books", s.handleListBooks)
		r.Delete("/books/{documentID}", s.handleDeleteDocument)
	})
}

// handleHealthCheck reports liveness.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{"state": "OK"}, s.logger)
}
