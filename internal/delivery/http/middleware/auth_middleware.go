package middleware

import (
	"errors"
	"strings"

	"job-scout/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
)

const (
	CtxTokenKey  = "auth_token"
	CtxUserIDKey = "user_id"
	CtxEmailKey  = "email"
)

// AuthMiddleware requires a bearer token and keeps it for pass-through to the
// webapp backend. With a verifier configured the signature is checked too.
type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		if m != nil && m.jwt != nil {
			claims, err := m.jwt.ValidateToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
				}
				return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
			}
			c.Locals(CtxUserIDKey, claims.User())
			c.Locals(CtxEmailKey, claims.Email)
		}

		c.Locals(CtxTokenKey, token)
		return c.Next()
	}
}

// TokenFrom returns the bearer token stored by AuthMiddleware.
func TokenFrom(c fiber.Ctx) string {
	s, _ := c.Locals(CtxTokenKey).(string)
	return s
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
