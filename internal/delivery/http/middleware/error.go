package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/pkg/response"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, data interface{}, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Data: data, Cause: cause}
}

// ErrorData is the structured payload rendered for domain errors.
type ErrorData struct {
	Code    string   `json:"code"`
	Entity  string   `json:"entity,omitempty"`
	Field   string   `json:"field,omitempty"`
	Value   string   `json:"value,omitempty"`
	Reasons []string `json:"reasons,omitempty"`
}

func statusForKind(err error) int {
	switch {
	case errors.Is(err, domainerr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domainerr.ErrDuplicate),
		errors.Is(err, domainerr.ErrInUse),
		errors.Is(err, domainerr.ErrAlreadyVerified):
		return fiber.StatusConflict
	case errors.Is(err, domainerr.ErrCircularReference),
		errors.Is(err, domainerr.ErrInvalidEnumValue),
		errors.Is(err, domainerr.ErrUnknownSkill),
		errors.Is(err, domainerr.ErrVerificationNotApplicable),
		errors.Is(err, domainerr.ErrIneligible):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domainerr.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domainerr.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// FromDomain converts a usecase error into an AppError. Errors that carry no
// domain kind become 500s.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	de, ok := domainerr.As(err)
	if !ok {
		return NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return NewAppError(statusForKind(de), de.Error(), ErrorData{
		Code:    de.Code(),
		Entity:  de.Entity,
		Field:   de.Field,
		Value:   de.Value,
		Reasons: de.Reasons,
	}, err)
}

type ErrorMiddleware struct {
	logger *zap.Logger
}

func NewErrorMiddleware(logger *zap.Logger) *ErrorMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
				)
				err = response.Error(c, fiber.StatusInternalServerError, response.MessageInternalServerError, nil)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}
		return m.Render(c, err)
	}
}

// Render writes err as the standard envelope. Server errors are logged and
// their detail is not exposed.
func (m *ErrorMiddleware) Render(c fiber.Ctx, err error) error {
	status, msg, data := normalizeError(err)
	if status >= 500 {
		m.logger.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)
	}
	return response.Error(c, status, msg, data)
}

func normalizeError(err error) (int, string, interface{}) {
	if err == nil {
		return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode <= 0 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}

		status := appErr.StatusCode
		msg := appErr.Message
		if msg == "" {
			msg = defaultMessageForStatus(status)
		}

		if status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}
		return status, msg, appErr.Data
	}

	if _, ok := domainerr.As(err); ok {
		return normalizeError(FromDomain(err))
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 {
			status = fiber.StatusInternalServerError
		}

		if status >= 500 {
			return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
		}

		msg := fiberErr.Message
		if msg == "" {
			msg = defaultMessageForStatus(status)
		}
		return status, msg, nil
	}

	return fiber.StatusInternalServerError, response.MessageInternalServerError, nil
}

func defaultMessageForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return response.MessageBadRequest
	case fiber.StatusUnauthorized:
		return response.MessageUnauthorized
	case fiber.StatusForbidden:
		return response.MessageForbidden
	case fiber.StatusNotFound:
		return response.MessageNotFound
	case fiber.StatusConflict:
		return response.MessageConflict
	case fiber.StatusUnprocessableEntity:
		return response.MessageUnprocessableEntity
	default:
		if status >= 500 {
			return response.MessageInternalServerError
		}
		return response.MessageError
	}
}
