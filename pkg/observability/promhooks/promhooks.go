// Package promhooks implements the observability hooks with Prometheus
// metrics.
//
// Register the hooks at startup and expose the registry:
//
//	m := promhooks.New(prometheus.NewRegistry())
//	m.Register()
//	r.Handle("/metrics", m.Handler())
package promhooks

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/numberline/pkg/observability"
)

const namespace = "numberline"

// Metrics holds the collectors behind every hook.
type Metrics struct {
	registry *prometheus.Registry

	layouts        *prometheus.CounterVec
	layoutDuration *prometheus.HistogramVec
	layoutItems    prometheus.Histogram
	layoutRows     prometheus.Histogram

	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec

	cacheRequests *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		layouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "layouts_total",
			Help: "Layout passes by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		layoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_duration_seconds",
			Help:    "Time spent in layout passes.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"strategy"}),
		layoutItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_items",
			Help:    "Items per layout pass.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		layoutRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "layout_rows",
			Help:    "Distinct rows per layout pass.",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "renders_total",
			Help: "Render calls by formats and outcome.",
		}, []string{"formats", "outcome"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "render_duration_seconds",
			Help:    "Time spent rendering.",
			Buckets: prometheus.DefBuckets,
		}, []string{"formats"}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_requests_total",
			Help: "Artifact cache lookups by format and result.",
		}, []string{"format", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_written_bytes_total",
			Help: "Bytes written to the artifact cache.",
		}, []string{"format"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP handling time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_errors_total",
			Help: "HTTP handler errors by route.",
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.layouts, m.layoutDuration, m.layoutItems, m.layoutRows,
		m.renders, m.renderDuration,
		m.cacheRequests, m.cacheBytes,
		m.httpRequests, m.httpDuration, m.httpErrors,
	)
	return m
}

// Register installs m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(pipelineHooks{m})
	observability.SetCacheHooks(cacheHooks{m})
	observability.SetHTTPHooks(httpHooks{m})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type pipelineHooks struct{ m *Metrics }

func (h pipelineHooks) OnLayoutStart(_ context.Context, _ string, itemCount int) {
	h.m.layoutItems.Observe(float64(itemCount))
}

func (h pipelineHooks) OnLayoutComplete(_ context.Context, strategy string, rows int, d time.Duration, err error) {
	h.m.layouts.WithLabelValues(strategy, outcome(err)).Inc()
	h.m.layoutDuration.WithLabelValues(strategy).Observe(d.Seconds())
	if err == nil {
		h.m.layoutRows.Observe(float64(rows))
	}
}

func (h pipelineHooks) OnRenderStart(context.Context, []string) {}

func (h pipelineHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	key := strings.Join(formats, ",")
	h.m.renders.WithLabelValues(key, outcome(err)).Inc()
	h.m.renderDuration.WithLabelValues(key).Observe(d.Seconds())
}

type cacheHooks struct{ m *Metrics }

func (h cacheHooks) OnCacheHit(_ context.Context, format string) {
	h.m.cacheRequests.WithLabelValues(format, "hit").Inc()
}

func (h cacheHooks) OnCacheMiss(_ context.Context, format string) {
	h.m.cacheRequests.WithLabelValues(format, "miss").Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, format string, size int) {
	h.m.cacheBytes.WithLabelValues(format).Add(float64(size))
}

type httpHooks struct{ m *Metrics }

func (h httpHooks) OnRequest(context.Context, string, string) {}

func (h httpHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (h httpHooks) OnError(_ context.Context, method, route string, _ error) {
	h.m.httpErrors.WithLabelValues(method, route).Inc()
}
