package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/hairizuan-noorazman/browser-smoke/logger"
)

// TokenMiddleware guards the API with a static bearer token. When no token
// is configured the middleware is a pass-through, since the results API is
// read-only.
type TokenMiddleware struct {
	tokenHash [32]byte
	enabled   bool
	logger    logger.Logger
}

// NewTokenMiddleware creates a token middleware. An empty token disables
// the check.
func NewTokenMiddleware(token string, log logger.Logger) *TokenMiddleware {
	m := &TokenMiddleware{logger: log}
	if token != "" {
		m.tokenHash = sha256.Sum256([]byte(token))
		m.enabled = true
	}
	return m
}

// Handler wraps an HTTP handler with bearer token authentication.
func (m *TokenMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		raw := strings.TrimPrefix(authHeader, "Bearer ")
		hash := sha256.Sum256([]byte(raw))
		if subtle.ConstantTimeCompare(hash[:], m.tokenHash[:]) != 1 {
			m.logger.Warn(r.Context(), "invalid bearer token", map[string]interface{}{
				"path": r.URL.Path,
			})
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
