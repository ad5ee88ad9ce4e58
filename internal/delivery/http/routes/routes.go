package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"volunteer-match/internal/delivery/http/handler"
	"volunteer-match/internal/delivery/http/middleware"
	"volunteer-match/internal/ws"
)

// Handlers groups everything mounted under /api/v1.
type Handlers struct {
	Categories      *handler.CategoryHandler
	Skills          *handler.SkillHandler
	VolunteerSkills *handler.VolunteerSkillHandler
	Verification    *handler.VerificationHandler
	Missions        *handler.MissionHandler
	Search          *handler.SearchHandler
}

type Registry struct {
	health  *handler.HealthHandler
	api     Handlers
	auth    *middleware.AuthMiddleware
	metrics http.Handler
	ws      *ws.Handler
}

func NewRegistry(health *handler.HealthHandler, api Handlers, auth *middleware.AuthMiddleware, metrics http.Handler, wsHandler *ws.Handler) *Registry {
	return &Registry{health: health, api: api, auth: auth, metrics: metrics, ws: wsHandler}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerMetrics(app)
	r.registerWS(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerMetrics(app *fiber.App) {
	if r.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.metrics))
	}
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.ws == nil || r.auth == nil {
		return
	}
	app.Get("/ws/events", r.auth.WebSocket(), r.ws.HandleEvents)
}

func (r *Registry) registerAPI(app *fiber.App) {
	v1 := app.Group("/api/v1")
	if r.auth != nil {
		v1.Use(r.auth.Middleware())
	}

	for _, h := range []interface{ RegisterRoutes(fiber.Router) }{
		r.api.Categories,
		r.api.Skills,
		r.api.VolunteerSkills,
		r.api.Verification,
		r.api.Missions,
		r.api.Search,
	} {
		h.RegisterRoutes(v1)
	}
}
