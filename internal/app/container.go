package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"volunteer-match/internal/config"
	"volunteer-match/internal/database/migration"
	dbpostgres "volunteer-match/internal/database/postgres"
	"volunteer-match/internal/events"
	"volunteer-match/internal/infrastructure/cache"
	"volunteer-match/internal/infrastructure/messaging"
	"volunteer-match/internal/metrics"
	"volunteer-match/internal/pkg/jwt"
	"volunteer-match/internal/repository"
	"volunteer-match/internal/repository/memory"
	"volunteer-match/internal/usecase"
	"volunteer-match/internal/ws"
)

type Usecases struct {
	Categories      *usecase.Category
	Skills          *usecase.Skill
	VolunteerSkills *usecase.VolunteerSkill
	Verification    *usecase.Verification
	Requirements    *usecase.Requirement
	Eligibility     *usecase.Eligibility
	Search          *usecase.Search
	Suggestions     *usecase.Suggestion
}

type Container struct {
	Config  config.Config
	Logger  *zap.Logger
	DB      *dbpostgres.Pool
	Store   repository.Store
	Cache   *cache.Redis
	NATS    *messaging.NATSPublisher
	Hub     *ws.Hub
	Metrics *metrics.Metrics
	Events  *events.Dispatcher
	JWT     *jwt.HMACService

	Usecases Usecases
}

// NewContainer opens the configured store and the optional Redis and NATS
// connections, then wires usecases and event listeners.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store repository.Store
		pool  *dbpostgres.Pool
	)
	switch cfg.App.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		store = memory.NewStore()
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		p, err := dbpostgres.Connect(connectCtx, cfg.Database, logger.Named("db"))
		if err != nil {
			return nil, err
		}
		runner := migration.Runner{Dir: cfg.Database.MigrationsDir, Log: logger.Named("migration")}
		if _, err := runner.Run(ctx, p.SQLDB()); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		pool = p
		store = repository.NewPostgresStore(p)
	}

	c := NewContainerWithStore(cfg, logger, store)
	c.DB = pool
	if pool != nil {
		c.Metrics.RegisterPool(pool)
	}

	c.Cache = cache.NewRedis(cfg.Redis, logger.Named("cache"))
	if c.Cache.Available() {
		c.Events.Register("search-cache", events.CacheInvalidator(c.Cache, usecase.SearchCachePattern))
		c.Usecases.Search = usecase.NewSearchUsecase(store, c.Cache, cfg.Search, cfg.Redis.TTL, logger.Named("search"))
	}

	if cfg.NATS.URL != "" {
		nc, err := messaging.Connect(cfg.NATS, logger.Named("nats"))
		if err != nil {
			// Events still reach the log, metrics and websocket listeners.
			logger.Warn("nats unavailable, events will not be forwarded", zap.Error(err))
		} else {
			c.NATS = nc
			c.Events.Register("nats", nc)
		}
	}

	return c, nil
}

// NewContainerWithStore wires everything around store with no cache and no
// NATS. Tests and the CLI use it directly.
func NewContainerWithStore(cfg config.Config, logger *zap.Logger, store repository.Store) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := metrics.New()
	dispatcher := events.NewDispatcher(logger.Named("events"), m)
	dispatcher.Register("log", events.LogListener(logger.Named("events")))
	dispatcher.Register("metrics", events.MetricsListener(m))

	hub := ws.NewHub(logger.Named("ws"))
	dispatcher.Register("websocket", hub)

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Hub:     hub,
		Metrics: m,
		Events:  dispatcher,
		JWT:     jwt.NewHMACService(cfg.Auth.AccessSecret, cfg.Auth.AccessExpiresIn),
	}
	c.Usecases = Usecases{
		Categories:      usecase.NewCategoryUsecase(store, dispatcher),
		Skills:          usecase.NewSkillUsecase(store, dispatcher),
		VolunteerSkills: usecase.NewVolunteerSkillUsecase(store, dispatcher),
		Verification:    usecase.NewVerificationUsecase(store, dispatcher),
		Requirements:    usecase.NewRequirementUsecase(store, dispatcher),
		Eligibility:     usecase.NewEligibilityUsecase(store),
		Search:          usecase.NewSearchUsecase(store, nil, cfg.Search, cfg.Redis.TTL, logger.Named("search")),
		Suggestions:     usecase.NewSuggestionUsecase(store),
	}
	return c
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	c.Hub.Stop()
	if c.NATS != nil {
		errs = append(errs, c.NATS.Close())
	}
	if c.Cache != nil {
		errs = append(errs, c.Cache.Close())
	}
	if c.DB != nil {
		errs = append(errs, c.DB.Close())
	}
	return errors.Join(errs...)
}
