package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"volunteer-match/internal/pkg/jwt"
)

const (
	CtxUserIDKey = "user_id"
	CtxRoleKey   = "role"
)

type AuthMiddleware struct {
	jwt jwt.Service
}

func NewAuthMiddleware(jwtSvc jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return m.handler(false)
}

// WebSocket also accepts the token as ?access_token=, since browsers cannot
// set headers on a websocket handshake.
func (m *AuthMiddleware) WebSocket() fiber.Handler {
	return m.handler(true)
}

func (m *AuthMiddleware) handler(allowQuery bool) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok && allowQuery {
			token = strings.TrimSpace(c.Query("access_token"))
			ok = token != ""
		}
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxRoleKey, claims.Role)
		return c.Next()
	}
}

// RequireRole admits callers holding one of roles. It must run after the
// auth middleware.
func RequireRole(roles ...jwt.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		role, ok := c.Locals(CtxRoleKey).(jwt.Role)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}
		if !slices.Contains(roles, role) {
			return NewAppError(fiber.StatusForbidden, "Forbidden", nil, nil)
		}
		return c.Next()
	}
}

// Caller returns the authenticated user id and role.
func Caller(c fiber.Ctx) (uuid.UUID, jwt.Role, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, "", false
	}
	role, _ := c.Locals(CtxRoleKey).(jwt.Role)
	return id, role, true
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
