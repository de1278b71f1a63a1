package api

import (
	"context"
	"net"
	"net/http"

	"github.com/pagemarkapp/pagemark-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUserID contextKey = "user_id"

// requireAuth is middleware that verifies the x-auth-user/x-auth-key header
// pair and attaches the authenticated user ID to the request context.
// Missing credentials are 401; a wrong username and a wrong key are the same
// 403, so responses cannot be used to probe for accounts.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := r.Header.Get("x-auth-user")
		key := r.Header.Get("x-auth-key")

		user, err := s.authService.Authenticate(r.Context(), username, key)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit throttles requests per client address using the keyed token
// bucket. RealIP middleware has already rewritten RemoteAddr when the
// request came through a trusted proxy.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientAddr(r)) {
			response.TooManyRequests(w, "too many requests", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientAddr returns the client host without the port.
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getUserID extracts the authenticated user ID from request context.
// Returns empty string if not authenticated.
func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}
