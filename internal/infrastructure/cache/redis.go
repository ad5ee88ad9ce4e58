// Package cache holds the Redis-backed store for search results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"volunteer-match/internal/config"
)

const (
	defaultTTL     = 10 * time.Minute
	defaultLockTTL = 30 * time.Second
	scanBatch      = 500
	versionPrefix  = "version:"
)

var ErrUnavailable = errors.New("redis unavailable")

// releaseLock deletes the lock only while it still holds our token, so a
// holder whose lock already expired cannot release someone else's.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// setIfVersion writes KEYS[1] only while the counter at KEYS[2] still reads
// ARGV[2]. A missing counter reads as 0.
var setIfVersion = redis.NewScript(`
local v = redis.call("GET", KEYS[2]) or "0"
if v ~= ARGV[2] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
return 1`)

// Redis caches search results. Built without a reachable server it turns
// every call into a miss so searches fall through to the store.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	degraded atomic.Bool
}

func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("search cache disabled")
		return &Redis{ttl: cfg.TTL, logger: logger}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, search cache bypassed", zap.Error(err))
		_ = client.Close()
		return &Redis{ttl: cfg.TTL, logger: logger}
	}
	logger.Info("search cache connected", zap.String("addr", client.Options().Addr))
	return NewRedisWithClient(client, cfg.TTL, logger)
}

func NewRedisWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) Ping(ctx context.Context) error {
	if !r.Available() {
		return ErrUnavailable
	}
	return r.client.Ping(ctx).Err()
}

// Get decodes the value at key into out and reports whether it was there.
func (r *Redis) Get(ctx context.Context, key string, out any) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, r.failed("get", err)
	case len(raw) == 0:
		return false, nil
	}
	r.recovered()
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// Version returns the invalidation counter for pattern. Every Invalidate of
// pattern bumps it first.
func (r *Redis) Version(ctx context.Context, pattern string) (int64, error) {
	if !r.Available() {
		return 0, nil
	}
	v, err := r.client.Get(ctx, versionKey(pattern)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, nil
	case err != nil:
		return 0, r.failed("version", err)
	}
	r.recovered()
	return v, nil
}

// SetIfVersion stores value as JSON unless pattern was invalidated since
// version was read. A zero ttl uses the configured default.
func (r *Redis) SetIfVersion(ctx context.Context, key string, value any, ttl time.Duration, pattern string, version int64) (bool, error) {
	if !r.Available() {
		return false, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	n, err := setIfVersion.Run(ctx, r.client,
		[]string{key, versionKey(pattern)},
		raw, strconv.FormatInt(version, 10), r.expiry(ttl).Milliseconds(),
	).Int()
	if err != nil {
		return false, r.failed("set", err)
	}
	r.recovered()
	return n == 1, nil
}

// TryLock takes a short-lived lock on key. When ok is false someone else
// holds it. unlock is always safe to call.
func (r *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error) {
	noop := func() {}
	if !r.Available() {
		return noop, false, nil
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	token := uuid.NewString()
	ok, err = r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return noop, false, r.failed("lock", err)
	}
	if !ok {
		return noop, false, nil
	}
	return func() {
		// The caller's context may be done by now.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := releaseLock.Run(ctx, r.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			r.logger.Warn("search cache unlock failed", zap.String("key", key), zap.Error(err))
		}
	}, true, nil
}

// Invalidate removes every key matching pattern and returns how many went.
func (r *Redis) Invalidate(ctx context.Context, pattern string) (int, error) {
	if !r.Available() {
		return 0, nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return 0, nil
	}

	// Bump before deleting so loads that started earlier cannot write back.
	if err := r.client.Incr(ctx, versionKey(pattern)).Err(); err != nil {
		return 0, r.failed("incr", err)
	}

	removed := 0
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, r.failed("scan", err)
		}
		if len(keys) > 0 {
			n, err := r.client.Unlink(ctx, keys...).Result()
			if err != nil {
				return removed, r.failed("unlink", err)
			}
			removed += int(n)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	r.logger.Debug("search cache invalidated", zap.String("pattern", pattern), zap.Int("keys", removed))
	return removed, nil
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}

func versionKey(pattern string) string {
	return versionPrefix + pattern
}

func (r *Redis) expiry(ttl time.Duration) time.Duration {
	switch {
	case ttl > 0:
		return ttl
	case r.ttl > 0:
		return r.ttl
	default:
		return defaultTTL
	}
}

// failed logs the first error of an outage; later ones stay quiet until a
// call succeeds again.
func (r *Redis) failed(op string, err error) error {
	if r.degraded.CompareAndSwap(false, true) {
		r.logger.Warn("search cache degraded", zap.String("op", op), zap.Error(err))
	}
	return err
}

func (r *Redis) recovered() {
	if r.degraded.CompareAndSwap(true, false) {
		r.logger.Info("search cache recovered")
	}
}
