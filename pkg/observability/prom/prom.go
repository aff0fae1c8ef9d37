// Package prom implements the observability hooks on Prometheus metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/algotrace/pkg/observability"
)

// Hooks records engine, cache and HTTP events as Prometheus metrics. It
// satisfies every hook interface in the observability package.
type Hooks struct {
	runs         *prometheus.CounterVec
	runSteps     *prometheus.HistogramVec
	runDuration  *prometheus.HistogramVec
	cacheEvents  *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var (
	_ observability.EngineHooks = (*Hooks)(nil)
	_ observability.CacheHooks  = (*Hooks)(nil)
	_ observability.HTTPHooks   = (*Hooks)(nil)
)

// Register creates the metrics on reg and returns hooks writing to them.
// It panics if the metrics are already registered on reg.
func Register(reg prometheus.Registerer) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "algotrace_runs_total",
			Help: "Engine runs by engine, operation and outcome",
		}, []string{"engine", "operation", "result"}),

		runSteps: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "algotrace_run_steps",
			Help:    "Number of steps recorded per run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
		}, []string{"engine"}),

		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "algotrace_run_duration_seconds",
			Help:    "Engine run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14), // 50us to ~400ms
		}, []string{"engine"}),

		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "algotrace_cache_events_total",
			Help: "Cache hits, misses and writes by key type",
		}, []string{"event", "key_type"}),

		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "algotrace_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "algotrace_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers h for every hook category.
func (h *Hooks) Install() {
	observability.SetEngineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *Hooks) OnRunStart(context.Context, string, string) {}

func (h *Hooks) OnRunComplete(_ context.Context, engine, operation string, steps int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.runs.WithLabelValues(engine, operation, result).Inc()
	if err != nil {
		return
	}
	h.runSteps.WithLabelValues(engine).Observe(float64(steps))
	h.runDuration.WithLabelValues(engine).Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues("hit", keyType).Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues("miss", keyType).Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.cacheEvents.WithLabelValues("set", keyType).Inc()
}

func (h *Hooks) OnRequest(context.Context, string, string) {}

func (h *Hooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
