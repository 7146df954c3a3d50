// Package telemetry provides Prometheus metrics and tracing for the
// link-tracker service.
package telemetry

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "link-tracker"

// Metrics holds all link-tracker Prometheus metrics
type Metrics struct {
	// Ingest metrics
	SubmissionsTotal *prometheus.CounterVec
	URLsExtracted    prometheus.Histogram
	RateLimitedTotal prometheus.Counter
	MergeDuration    prometheus.Histogram

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initIngestMetrics(m)
	initHTTPMetrics(m)
	return m
}

func initIngestMetrics(m *Metrics) {
	m.SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "link_tracker_submissions_total",
		Help: "URL merge outcomes across admitted submissions (inserted, updated, noop)",
	}, []string{"outcome"})

	m.URLsExtracted = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "link_tracker_urls_extracted",
		Help:    "Unique URLs extracted per admitted submission",
		Buckets: []float64{1, 2, 5, 10, 25, 50},
	})

	m.RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "link_tracker_rate_limited_total",
		Help: "Submissions denied by the sliding-window admission limit",
	})

	m.MergeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "link_tracker_merge_duration_seconds",
		Help:    "Time to merge a single URL into the collection",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	})
}

func initHTTPMetrics(m *Metrics) {
	m.RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "link_tracker_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
}

// RecordMergeOutcome records the result and duration of one URL merge
func (p *Provider) RecordMergeOutcome(outcome string, duration time.Duration) {
	p.Metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	p.Metrics.MergeDuration.Observe(duration.Seconds())
}

// RecordExtraction records how many unique URLs one submission carried
func (p *Provider) RecordExtraction(urls int) {
	p.Metrics.URLsExtracted.Observe(float64(urls))
}

// RecordRateLimited records a denied submission
func (p *Provider) RecordRateLimited() {
	p.Metrics.RateLimitedTotal.Inc()
}

// RecordHTTPRequest records one completed request by route template
func (p *Provider) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	p.Metrics.RequestDuration.
		WithLabelValues(method, path, strconv.Itoa(status)).
		Observe(duration.Seconds())
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
