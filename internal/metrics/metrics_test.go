package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePool struct{}

func (fakePool) Stat() (int32, int32, int32) { return 5, 3, 2 }

func TestMetrics_Counters(t *testing.T) {
	m := New()
	m.EventPublished("skill.created")
	m.EventPublished("skill.created")
	m.ListenerFailed("nats")
	m.ObserveRequest("GET", "/api/v1/skills", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.domainEvents.WithLabelValues("skill.created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listenerFailures.WithLabelValues("nats")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/skills", "200")))
}

func TestMetrics_PoolGauges(t *testing.T) {
	m := New()
	m.RegisterPool(fakePool{})

	n, err := testutil.GatherAndCount(m.Registry(), "skills_db_pool_acquired_conns", "skills_db_pool_idle_conns")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.EventPublished("x")
		m.ListenerFailed("x")
		m.ObserveRequest("GET", "/", 200, time.Second)
	})
}
