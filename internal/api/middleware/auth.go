package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"financing-engine/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var errMalformedAuthHeader = errors.New("authorization header is not a bearer token")

// AuthMiddleware guards the loan endpoints with an HMAC-signed bearer token.
// When auth is disabled in config the chain passes through untouched.
func AuthMiddleware(cfg config.AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := validateBearer(r, cfg.JWTSecret); err != nil {
				logger.WarnContext(r.Context(), "Rejected unauthenticated request",
					"path", r.URL.Path, "error", err)
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":{"message":"Unauthorized"}}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validateBearer(r *http.Request, secret string) error {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return errMalformedAuthHeader
	}

	parsed, err := jwt.Parse(token,
		func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return jwt.ErrTokenUnverifiable
	}
	return nil
}
