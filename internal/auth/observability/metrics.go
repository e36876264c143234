package observability

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "taskauth"

// Metrics holds the auth service's Prometheus collectors on a private
// registry.
type Metrics struct {
	registry *prometheus.Registry

	AuthAttempts  *prometheus.CounterVec
	RateLimitHits *prometheus.CounterVec
	HashSeconds   prometheus.Histogram
	WindowsSwept  prometheus.Counter
}

// NewMetrics creates a registry with the Go and process collectors plus the
// auth metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Register and login attempts by outcome",
			},
			[]string{"operation", "outcome"},
		),
		RateLimitHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Requests denied by the rate limiter",
			},
			[]string{"action"},
		),
		HashSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "password_hash_duration_seconds",
				Help:      "Time spent hashing passwords",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1},
			},
		),
		WindowsSwept: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ratelimit_windows_swept_total",
				Help:      "Elapsed rate limit windows evicted by housekeeping",
			},
		),
	}

	registry.MustRegister(m.AuthAttempts)
	registry.MustRegister(m.RateLimitHits)
	registry.MustRegister(m.HashSeconds)
	registry.MustRegister(m.WindowsSwept)

	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func (m *Metrics) AuthAttempt(op, outcome string) {
	m.AuthAttempts.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) RateLimited(action ratelimit.Action) {
	m.RateLimitHits.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) HashDuration(d time.Duration) {
	m.HashSeconds.Observe(d.Seconds())
}

// WindowsEvicted counts windows removed by a housekeeping sweep.
func (m *Metrics) WindowsEvicted(n int) {
	m.WindowsSwept.Add(float64(n))
}

// WatchLimiter exports the number of live rate limit windows.
func (m *Metrics) WatchLimiter(l *ratelimit.Limiter) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ratelimit_windows",
			Help:      "Live rate limit windows",
		},
		func() float64 { return float64(l.Len()) },
	))
}

// WatchGuard exports store queries in flight and waiting for a slot.
func (m *Metrics) WatchGuard(g *store.Guard) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_queries_in_flight",
				Help:      "Store queries currently running",
			},
			func() float64 { return float64(g.InFlight()) },
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "store_queries_waiting",
				Help:      "Store queries queued for a connection slot",
			},
			func() float64 { return float64(g.Waiting()) },
		),
	)
}
