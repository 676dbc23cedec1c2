package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const userIDKey contextKey = "user-id"

// DevUserID is the identity assigned to every request when no session
// secret is configured. Local development gets a working API without a
// token issuer.
const DevUserID = "dev_user"

// AuthMiddleware verifies session tokens and attaches the caller's user
// ID to the request context.
type AuthMiddleware struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthMiddleware creates the session token middleware. An empty secret
// enables development mode: requests pass through as DevUserID.
func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
		logger: logger,
	}
}

// Middleware authenticates the request. Tokens are HMAC-signed JWTs
// carrying the user ID in the "sub" claim, accepted from the
// Authorization bearer header or the "session" cookie.
func (m *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(m.secret) == 0 {
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), DevUserID)))
			return
		}

		token := extractToken(r)

		if token == "" {
			m.unauthorized(w)
			return
		}

		userID, err := m.verify(token)

		if err != nil {
			m.logger.Debug("session token rejected", zap.Error(err))
			m.unauthorized(w)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// verify parses and validates the token, returning the subject claim.
func (m *AuthMiddleware) verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return m.secret, nil
	})

	if err != nil {
		return "", err
	}

	subject, err := parsed.Claims.GetSubject()

	if err != nil || subject == "" {
		return "", fmt.Errorf("token has no subject claim")
	}

	return subject, nil
}

// extractToken pulls the session token from the request.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")

	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}

	return ""
}

// unauthorized writes the standard authentication failure response.
func (m *AuthMiddleware) unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]interface{}{
		"success": false,
		"error":   "Authentication required",
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		m.logger.Error("failed to encode response", zap.Error(err))
	}
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the authenticated user ID, or "" when the request
// did not pass authentication.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}

	return ""
}
