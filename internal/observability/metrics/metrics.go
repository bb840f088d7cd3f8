package metrics

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	generations      *prometheus.CounterVec
	creditRefunds    prometheus.Counter
	providerRetries  *prometheus.CounterVec
	rateLimitAllowed *prometheus.CounterVec
	rateLimitDenied  *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New registers the YTZA instruments on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytza_generations_total",
			Help: "Thumbnail generation attempts by style and outcome.",
		}, []string{"style", "outcome"}),
		creditRefunds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ytza_credit_refunds_total",
			Help: "Credits refunded after provider failures.",
		}),
		providerRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytza_provider_retries_total",
			Help: "Upstream provider retries by provider.",
		}, []string{"provider"}),
		rateLimitAllowed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytza_rate_limit_allowed_total",
			Help: "Requests admitted by the rate limiter per endpoint class.",
		}, []string{"class"}),
		rateLimitDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ytza_rate_limit_denied_total",
			Help: "Requests rejected by the rate limiter per endpoint class.",
		}, []string{"class"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ytza_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	reg.MustRegister(
		m.generations,
		m.creditRefunds,
		m.providerRetries,
		m.rateLimitAllowed,
		m.rateLimitDenied,
		m.httpDuration,
	)

	return m
}

func (m *Metrics) RecordGeneration(style, outcome string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(style, outcome).Inc()
}

func (m *Metrics) RecordCreditRefund() {
	if m == nil {
		return
	}
	m.creditRefunds.Inc()
}

func (m *Metrics) RecordProviderRetry(provider string) {
	if m == nil {
		return
	}
	m.providerRetries.WithLabelValues(provider).Inc()
}

func (m *Metrics) RecordRateLimitAllowed(class string) {
	if m == nil {
		return
	}
	m.rateLimitAllowed.WithLabelValues(class).Inc()
}

func (m *Metrics) RecordRateLimitDenied(class string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.WithLabelValues(class).Inc()
}

// GinMiddleware records request latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := strings.TrimSpace(c.FullPath())
		if route == "" {
			route = "unknown"
		}
		m.httpDuration.WithLabelValues(
			route,
			c.Request.Method,
			statusClass(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
