package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"volunteer-match/internal/config"
	"volunteer-match/internal/delivery/http/handler"
	"volunteer-match/internal/delivery/http/middleware"
	"volunteer-match/internal/delivery/http/routes"
	"volunteer-match/internal/pkg/jwt"
	"volunteer-match/internal/ws"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// New builds the HTTP app around an already wired container and starts the
// websocket hub.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:      c.Config.App.AppName,
		ErrorHandler: errorHandler(c.Logger),
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	go c.Hub.Run()

	return &App{Fiber: f, Container: c}
}

func Bootstrap(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Auth.AccessSecret == "" {
		logger.Warn("JWT_ACCESS_SECRET is empty; every authenticated route will answer 401")
	}
	app := New(c)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	accessMw := middleware.NewAccessLogMiddleware(c.Logger.Named("http"), c.Metrics)
	app.Use(accessMw.Middleware())

	errMw := middleware.NewErrorMiddleware(c.Logger.Named("http"))
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	uc := c.Usecases
	checks := map[string]handler.Pinger{"store": c.Store}
	if c.Cache != nil && c.Cache.Available() {
		checks["cache"] = c.Cache
	}

	api := routes.Handlers{
		Categories:      handler.NewCategoryHandler(uc.Categories),
		Skills:          handler.NewSkillHandler(uc.Skills),
		VolunteerSkills: handler.NewVolunteerSkillHandler(uc.VolunteerSkills),
		Verification:    handler.NewVerificationHandler(uc.Verification),
		Missions:        handler.NewMissionHandler(uc.Requirements, uc.Eligibility, uc.Search, uc.Suggestions),
		Search:          handler.NewSearchHandler(uc.Search, uc.Suggestions),
	}

	routes.NewRegistry(
		handler.NewHealthHandler(checks),
		api,
		middleware.NewAuthMiddleware(c.JWT),
		c.Metrics.Handler(),
		ws.NewHandler(c.Hub, volunteerScope, c.Logger.Named("ws")),
	).Register(app)
}

// volunteerScope keeps volunteers on their own event stream.
func volunteerScope(c fiber.Ctx) (*uuid.UUID, error) {
	id, role, ok := middleware.Caller(c)
	if !ok {
		return nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	if role == jwt.RoleVolunteer {
		return &id, nil
	}
	return nil, nil
}

// errorHandler renders errors that escape the middleware chain, such as
// fiber's own 404 for unknown routes.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	mw := middleware.NewErrorMiddleware(logger)
	return func(c fiber.Ctx, err error) error {
		return mw.Render(c, err)
	}
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
