package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// ErrInvalidToken covers every verification failure: bad signature, expired
// and malformed tokens all collapse into it so the API never reveals which
// check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims defines the JWT claims structure. The subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
}

type contextKey string

const userIDKey = contextKey("userID")

// TokenService issues and verifies signed identity tokens. The secret is
// injected at construction and never changes at runtime.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given signing secret and
// token lifetime.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token whose subject is the given user ID.
func (s *TokenService) Issue(userID string) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string, returning its claims.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware creates a middleware for protecting routes. It reads the
// bearer token from the Authorization header only, verifies it and passes
// the subject down via the request context. Query parameters are never
// consulted here: they end up in access logs.
func (s *TokenService) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := headerToken(r)
			if tokenStr == "" {
				unauthorized(w, "missing auth token")
				return
			}

			claims, err := s.Verify(tokenStr)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected request with invalid token")
				unauthorized(w, ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from the Authorization header, or from the
// "token" query parameter as a fallback. Only the websocket handler uses
// the fallback, for clients that cannot set headers; protected REST routes
// go through Middleware, which reads the header alone.
func BearerToken(r *http.Request) string {
	if token := headerToken(r); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

func headerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// UserIDFromContext returns the verified user ID placed there by Middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying the given user ID. Used by the
// websocket handler, which authenticates outside of Middleware.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"status": "fail", "message": message})
}
