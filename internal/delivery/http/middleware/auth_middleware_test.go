package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/pkg/jwt"
)

func newAuthApp(t *testing.T, svc jwt.Service) *fiber.App {
	t.Helper()
	auth := NewAuthMiddleware(svc)
	app := fiber.New()
	app.Use(NewErrorMiddleware(nil).Middleware())

	whoami := func(c fiber.Ctx) error {
		id, role, ok := Caller(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.SendString(id.String() + ":" + string(role))
	}
	app.Get("/api", auth.Middleware(), whoami)
	app.Get("/admin", auth.Middleware(), RequireRole(jwt.RoleAdmin), whoami)
	app.Get("/ws", auth.WebSocket(), whoami)
	return app
}

func status(t *testing.T, app *fiber.App, target, bearer string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, target, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	return res.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	svc := jwt.NewHMACService("secret", time.Hour)
	app := newAuthApp(t, svc)

	volunteer, err := svc.GenerateAccessToken(uuid.New(), jwt.RoleVolunteer)
	require.NoError(t, err)
	admin, err := svc.GenerateAccessToken(uuid.New(), jwt.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "/api", ""))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "/api", "garbage"))
	assert.Equal(t, fiber.StatusOK, status(t, app, "/api", volunteer))

	assert.Equal(t, fiber.StatusForbidden, status(t, app, "/admin", volunteer))
	assert.Equal(t, fiber.StatusOK, status(t, app, "/admin", admin))
}

func TestAuthMiddleware_QueryTokenOnlyForWebSocket(t *testing.T) {
	svc := jwt.NewHMACService("secret", time.Hour)
	app := newAuthApp(t, svc)

	token, err := svc.GenerateAccessToken(uuid.New(), jwt.RoleOrganization)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "/api?access_token="+token, ""))
	assert.Equal(t, fiber.StatusOK, status(t, app, "/ws?access_token="+token, ""))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "/ws?access_token=nope", ""))
}

func TestBearerTokenFromHeader(t *testing.T) {
	cases := map[string]struct {
		header string
		token  string
		ok     bool
	}{
		"empty":       {"", "", false},
		"no scheme":   {"abc", "", false},
		"basic":       {"Basic abc", "", false},
		"lower case":  {"bearer abc", "abc", true},
		"blank token": {"Bearer   ", "", false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			token, ok := bearerTokenFromHeader(tc.header)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.token, token)
		})
	}
}
