package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/salestracker/internal/service"
)

// TokenValidator verifies an access token and returns the bound user ID.
// Implemented by service.TokenService.
type TokenValidator interface {
	Validate(tokenString string) (int64, error)
}

// Middleware returns an HTTP middleware that enforces bearer-token
// authentication. On success the authenticated user's ID is stored in
// the request context; on failure the request short-circuits with a 401
// before reaching any handler or the database.
func Middleware(validator TokenValidator, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("missing or malformed authorization header")
				writeUnauthorized(w, "Authentication credentials were not provided")
				return
			}

			userID, err := validator.Validate(tokenString)
			if err != nil {
				if errors.Is(err, service.ErrTokenExpired) {
					log.Debug().Str("path", r.URL.Path).Msg("expired token rejected")
					writeUnauthorized(w, "Token has expired")
					return
				}
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("invalid token rejected")
				writeUnauthorized(w, "Token is invalid")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header is missing")
	}

	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errors.New("authorization header is not a bearer token")
	}

	return token, nil
}

// writeUnauthorized writes the generic 401 error body.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
