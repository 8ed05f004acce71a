package middleware

import (
	"net/http"
	"strings"

	"github.com/splitr-app/splitr/internal/auth"
)

// bearerToken extracts the token from an Authorization header, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// OptionalAuth validates a Bearer token if present and attaches the
// caller's identity to the request context. Requests without a valid token
// pass through unauthenticated; read operations then serve their
// zero-valued defaults.
func OptionalAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				if claims, err := jwtManager.Validate(token); err == nil {
					r = r.WithContext(auth.WithIdentity(r.Context(), claims.UserID, claims.Email))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without a valid Bearer token with 401 and
// attaches the caller's identity otherwise. Used on mutation endpoints,
// where an unauthenticated default makes no sense.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
				return
			}
			claims, err := jwtManager.Validate(token)
			if err != nil {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}
			r = r.WithContext(auth.WithIdentity(r.Context(), claims.UserID, claims.Email))
			next.ServeHTTP(w, r)
		})
	}
}
