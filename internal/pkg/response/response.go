// Package response renders every HTTP reply, success or failure, in one
// envelope: {status, message, data, request_id}.
package response

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// RequestIDLocal is the fiber Locals key the access log stores the request
// id under.
const RequestIDLocal = "request_id"

type Envelope struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	RequestID string `json:"request_id,omitempty"`
}

const (
	MessageOK                  = "ok"
	MessageBadRequest          = "bad request"
	MessageUnauthorized        = "unauthorized"
	MessageForbidden           = "forbidden"
	MessageNotFound            = "not found"
	MessageConflict            = "conflict"
	MessageUnprocessableEntity = "unprocessable entity"
	MessageInternalServerError = "internal server error"
	MessageError               = "error"
)

func Success(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

func Error(c fiber.Ctx, status int, message string, data any) error {
	return write(c, status, message, data)
}

func write(c fiber.Ctx, status int, message string, data any) error {
	if status < 100 || status > 599 {
		status = fiber.StatusInternalServerError
	}
	if message == "" {
		message = defaultMessage(status)
	}
	env := Envelope{Status: status, Message: message, Data: data}
	if id, ok := c.Locals(RequestIDLocal).(string); ok {
		env.RequestID = id
	}
	return c.Status(status).JSON(env)
}

func defaultMessage(status int) string {
	switch {
	case status >= 200 && status < 300:
		return MessageOK
	case status >= 500:
		return MessageInternalServerError
	}
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return MessageError
}
