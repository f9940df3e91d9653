package http

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
)

// Middleware defines the standard signature for an HTTP middleware.
type Middleware func(http.Handler) http.Handler

// Chain combines multiple middlewares into a single handler.
// The middlewares are applied in the order they are passed.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// logMiddleware logs all incoming requests.
func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Info("incoming request", "method", r.Method, "url", r.URL.String())
		next.ServeHTTP(w, r)
	})
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// requireAuth rejects requests that do not carry a valid access token.
// Refresh tokens are valid JWTs too but must not pass here.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.Metrics.IncAuthFailures()
			http.Error(w, "Not authorised to make this request", http.StatusUnauthorized)
			return
		}

		if _, err := s.Tokens.ValidateAccess(token); err != nil {
			log.Debug("rejected access token", "error", err)
			s.Metrics.IncAuthFailures()
			http.Error(w, "Not authorised to make this request", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
