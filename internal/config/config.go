package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	NATS     NATSConfig
	Search   SearchConfig
}

type AppConfig struct {
	AppName       string `validate:"required"`
	Environment   string `validate:"required"`
	HTTPPort      string `validate:"required,numeric"`
	LogLevel      string `validate:"oneof=debug info warn error"`
	StorageDriver string `validate:"oneof=postgres memory"`
}

type DatabaseConfig struct {
	DBHost     string `validate:"required_if=Driver postgres"`
	DBPort     string `validate:"required_if=Driver postgres"`
	DBName     string `validate:"required_if=Driver postgres"`
	DBUser     string `validate:"required_if=Driver postgres"`
	DBPassword string
	DBSSLMode  string

	// Driver mirrors App.StorageDriver so the postgres fields are only
	// required when they are used.
	Driver string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32 `validate:"gte=0"`
	PoolMinConns          int32 `validate:"gte=0"`
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
	MigrationsDir         string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	TTL      time.Duration
}

type AuthConfig struct {
	AccessSecret    string
	AccessExpiresIn time.Duration
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string `validate:"required"`
}

type SearchConfig struct {
	DefaultLimit int `validate:"gt=0,ltefield=MaxLimit"`
	MaxLimit     int `validate:"gt=0"`
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

var validate = validator.New()

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	var invalid []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}
	optDefault := func(key, def string) string {
		if v := opt(key); v != "" {
			return v
		}
		return def
	}
	optInt := func(key string, def int) int {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	optBool := func(key string, def bool) bool {
		raw := opt(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return v
	}
	// Durations accept Go syntax ("15m") or a bare number of seconds.
	optDuration := func(key string, def time.Duration) time.Duration {
		raw := opt(key)
		if raw == "" {
			return def
		}
		if n, err := strconv.Atoi(raw); err == nil {
			return time.Duration(n) * time.Second
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			invalid = append(invalid, key)
			return def
		}
		return d
	}

	cfg.App = AppConfig{
		AppName:       req("APP_NAME"),
		Environment:   req("APP_ENV"),
		HTTPPort:      req("HTTP_PORT"),
		LogLevel:      strings.ToLower(optDefault("LOG_LEVEL", "info")),
		StorageDriver: strings.ToLower(optDefault("STORAGE_DRIVER", "postgres")),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  optDefault("DB_SSL_MODE", "disable"),
		Driver:     cfg.App.StorageDriver,

		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", 0),
		MigrationsDir:         opt("DB_MIGRATIONS_DIR"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  optBool("CACHE_ENABLED", true),
		Host:     optDefault("REDIS_HOST", "localhost"),
		Port:     optDefault("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD"),
		TTL:      optDuration("REDIS_TTL", 600*time.Second),
	}

	cfg.Auth = AuthConfig{
		AccessSecret:    opt("JWT_ACCESS_SECRET"),
		AccessExpiresIn: optDuration("JWT_ACCESS_EXPIRES_IN", 15*time.Minute),
	}

	cfg.NATS = NATSConfig{
		URL:           opt("NATS_URL"),
		SubjectPrefix: optDefault("NATS_SUBJECT_PREFIX", "skills"),
	}

	cfg.Search = SearchConfig{
		DefaultLimit: optInt("SEARCH_DEFAULT_LIMIT", 50),
		MaxLimit:     optInt("SEARCH_MAX_LIMIT", 200),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.App.Environment) {
	case "dev", "development", "local":
		return true
	}
	return false
}
