package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"volunteer-match/internal/config"
)

func TestRedis_DisabledBypasses(t *testing.T) {
	r := NewRedis(config.RedisConfig{Enabled: false}, nil)
	ctx := context.Background()

	assert.False(t, r.Available())
	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)

	var out []string
	hit, err := r.Get(ctx, "skills:search:x", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	v, err := r.Version(ctx, "skills:search:*")
	require.NoError(t, err)
	assert.Zero(t, v)
	stored, err := r.SetIfVersion(ctx, "skills:search:x", []string{"a"}, 0, "skills:search:*", v)
	require.NoError(t, err)
	assert.False(t, stored)
	n, err := r.Invalidate(ctx, "skills:search:*")
	require.NoError(t, err)
	assert.Zero(t, n)

	unlock, ok, err := r.TryLock(ctx, "skills:lock:x", 0)
	require.NoError(t, err)
	assert.False(t, ok)
	unlock()
	assert.NoError(t, r.Close())
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	hit, err := r.Get(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, r.Close())
}

func TestVersionKeyOutsidePattern(t *testing.T) {
	key := versionKey("skills:search:*")
	assert.Equal(t, "version:skills:search:*", key)
	assert.False(t, strings.HasPrefix(key, "skills:search:"))
}

func TestRedis_Expiry(t *testing.T) {
	r := &Redis{ttl: time.Minute}
	assert.Equal(t, 5*time.Second, r.expiry(5*time.Second))
	assert.Equal(t, time.Minute, r.expiry(0))
	assert.Equal(t, defaultTTL, (&Redis{}).expiry(0))
}

func TestRedis_DegradedLogsOnce(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := &Redis{logger: zap.New(core)}

	boom := errors.New("connection refused")
	assert.ErrorIs(t, r.failed("get", boom), boom)
	assert.ErrorIs(t, r.failed("set", boom), boom)
	assert.Equal(t, 1, logs.FilterMessage("search cache degraded").Len())

	r.recovered()
	r.recovered()
	assert.Equal(t, 1, logs.FilterMessage("search cache recovered").Len())

	r.failed("get", boom)
	assert.Equal(t, 2, logs.FilterMessage("search cache degraded").Len())
}
