package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects and exposes the service's Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	AnalysesTotal      *prometheus.CounterVec
	AnalysisConfidence prometheus.Histogram
	SuggestionsEmitted prometheus.Histogram
	CreditsConsumed    prometheus.Counter
	ProviderErrors     *prometheus.CounterVec
}

// NewMetrics registers the metric set on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apostai_http_requests_total",
				Help: "Total HTTP requests served",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apostai_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
			[]string{"method", "path"},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apostai_analyses_total",
				Help: "Game analyses executed, by outcome",
			},
			[]string{"outcome"}, // "ok" or "fallback"
		),
		AnalysisConfidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "apostai_analysis_confidence",
				Help:    "Confidence values of completed analyses",
				Buckets: prometheus.LinearBuckets(35, 5, 12),
			},
		),
		SuggestionsEmitted: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "apostai_suggestions_emitted",
				Help:    "Suggestions per generation request after filtering",
				Buckets: prometheus.LinearBuckets(0, 2, 14),
			},
		),
		CreditsConsumed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "apostai_credits_consumed_total",
				Help: "Analysis credits debited",
			},
		),
		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apostai_provider_errors_total",
				Help: "Football-data provider failures by endpoint",
			},
			[]string{"endpoint"},
		),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.AnalysesTotal,
		m.AnalysisConfidence,
		m.SuggestionsEmitted,
		m.CreditsConsumed,
		m.ProviderErrors,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records per-request counters and latency.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
