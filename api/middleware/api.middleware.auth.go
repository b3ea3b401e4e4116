package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ranchwatch/telemetry-hub/internal/errors"
	nuts "github.com/vaudience/go-nuts"
)

// WriteTokenConfig holds the shared secret guarding the ingest endpoint.
type WriteTokenConfig struct {
	Token string
}

// WriteTokenMiddleware authenticates device writes against a single
// shared bearer token. An empty configured token disables the check
// entirely; that is a development-mode bypass, not a production setup.
type WriteTokenMiddleware struct {
	config WriteTokenConfig
}

func NewWriteTokenMiddleware(config WriteTokenConfig) *WriteTokenMiddleware {
	if config.Token == "" {
		nuts.L.Warnf("[Auth] No write token configured, ingest endpoint is unauthenticated")
	}
	return &WriteTokenMiddleware{config: config}
}

// Authenticate validates the Authorization header on write requests.
// Token comparison is constant-time so a mismatch reveals nothing about
// the shared secret through response timing.
func (m *WriteTokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.config.Token == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewAuthError("Authentication credentials were not provided.", nil))
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.config.Token)) != 1 {
			handleError(w, errors.NewAuthError("Invalid token.", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Helper functions

func extractToken(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	parts := strings.Split(bearerToken, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func handleError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if apiErr, ok := err.(*errors.APIError); ok {
		w.WriteHeader(apiErr.Code)
		json.NewEncoder(w).Encode(map[string]string{"detail": apiErr.Message})
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"detail": "Internal Server Error"})
}
