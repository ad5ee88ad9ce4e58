package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"volunteer-match/internal/pkg/response"
)

const CtxRequestIDKey = response.RequestIDLocal

// RequestObserver receives one sample per request. *metrics.Metrics
// satisfies it.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type AccessLogMiddleware struct {
	logger   *zap.Logger
	observer RequestObserver
}

func NewAccessLogMiddleware(logger *zap.Logger, observer RequestObserver) *AccessLogMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessLogMiddleware{logger: logger, observer: observer}
}

func (m *AccessLogMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		rid := c.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("X-Request-ID", rid)
		c.Locals(CtxRequestIDKey, rid)

		err := c.Next()

		dur := time.Since(start)
		status := c.Response().StatusCode()
		// The error middleware sits inside this one, so the status is final
		// unless something below it returned a raw error.
		if err != nil {
			status = statusOf(err)
		}

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		if m.observer != nil {
			m.observer.ObserveRequest(c.Method(), route, status, dur)
		}

		m.logger.Info("http access",
			zap.String("rid", rid),
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", dur),
			zap.Int("req_bytes", c.Request().Header.ContentLength()),
			zap.Int("resp_bytes", len(c.Response().Body())),
			zap.String("ua", c.Get("User-Agent")),
		)

		return err
	}
}

func statusOf(err error) int {
	status, _, _ := normalizeError(err)
	return status
}
