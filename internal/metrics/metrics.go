package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skills"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	domainEvents     *prometheus.CounterVec
	listenerFailures *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		domainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Committed domain events by name.",
		}, []string{"event"}),
		listenerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_listener_failures_total",
			Help:      "Event listener failures by listener.",
		}, []string{"listener"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.domainEvents,
		m.listenerFailures,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) EventPublished(name string) {
	if m == nil {
		return
	}
	m.domainEvents.WithLabelValues(name).Inc()
}

func (m *Metrics) ListenerFailed(listener string) {
	if m == nil {
		return
	}
	m.listenerFailures.WithLabelValues(listener).Inc()
}

// PoolStats is satisfied by the postgres pool.
type PoolStats interface {
	Stat() (total, idle, acquired int32)
}

// RegisterPool exports connection pool gauges read at scrape time.
func (m *Metrics) RegisterPool(pool PoolStats) {
	gauge := func(name, help string, pick func(total, idle, acquired int32) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 {
			return float64(pick(pool.Stat()))
		})
	}
	m.registry.MustRegister(
		gauge("total_conns", "Open connections.", func(t, _, _ int32) int32 { return t }),
		gauge("idle_conns", "Idle connections.", func(_, i, _ int32) int32 { return i }),
		gauge("acquired_conns", "Connections in use.", func(_, _, a int32) int32 { return a }),
	)
}
