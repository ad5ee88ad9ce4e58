package ws

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ScopeFunc pins a connection to one volunteer's events, for callers that
// may only see their own. A nil id leaves the stream as requested.
type ScopeFunc func(c fiber.Ctx) (*uuid.UUID, error)

type Handler struct {
	hub    *Hub
	scope  ScopeFunc
	logger *zap.Logger
}

func NewHandler(hub *Hub, scope ScopeFunc, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hub: hub, scope: scope, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleEvents streams domain events. ?volunteer_id= narrows the stream to
// one volunteer's events.
func (h *Handler) HandleEvents(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	var volunteerID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("volunteer_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid volunteer_id")
		}
		volunteerID = &id
	}
	if h.scope != nil {
		pinned, err := h.scope(c)
		if err != nil {
			return err
		}
		if pinned != nil {
			volunteerID = pinned
		}
	}

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("ws upgrade failed", zap.Error(err))
			return
		}

		client := NewClient(h.hub, conn, volunteerID)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}
