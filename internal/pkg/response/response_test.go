package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, h fiber.Handler) Envelope {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		c.Locals(RequestIDLocal, "req-1")
		return h(c)
	})
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, env.Status, resp.StatusCode)
	return env
}

func TestSuccess_DefaultsMessage(t *testing.T) {
	env := render(t, func(c fiber.Ctx) error {
		return Success(c, fiber.StatusCreated, "", map[string]int{"n": 1})
	})
	assert.Equal(t, fiber.StatusCreated, env.Status)
	assert.Equal(t, MessageOK, env.Message)
	assert.Equal(t, "req-1", env.RequestID)
}

func TestError_NormalizesStatus(t *testing.T) {
	env := render(t, func(c fiber.Ctx) error {
		return Error(c, 42, "", nil)
	})
	assert.Equal(t, fiber.StatusInternalServerError, env.Status)
	assert.Equal(t, MessageInternalServerError, env.Message)
}

func TestError_UsesStatusText(t *testing.T) {
	env := render(t, func(c fiber.Ctx) error {
		return Error(c, fiber.StatusConflict, "", nil)
	})
	assert.Equal(t, MessageConflict, env.Message)
}
