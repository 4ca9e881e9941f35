// Package metrics holds the Prometheus collectors exported on /v1/metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "trujobs"

// Metrics methods are safe on a nil receiver so collaborators can run uninstrumented.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	HRRegistrations *prometheus.CounterVec
	HRDecisions     *prometheus.CounterVec
	JobsCreated     prometheus.Counter
	JobsDeleted     prometheus.Counter
	JobViews        prometheus.Counter

	MatchingRequests *prometheus.CounterVec
	MatchingLatency  *prometheus.HistogramVec

	Uploads     *prometheus.CounterVec
	RateLimited *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HRRegistrations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hr_registrations_total",
			Help:      "HR registrations by outcome (created, existing, linked)",
		}, []string{"outcome"}),
		HRDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hr_decisions_total",
			Help:      "Admin approval decisions by resulting status",
		}, []string{"status"}),
		JobsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_created_total",
			Help:      "Jobs created",
		}),
		JobsDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_deleted_total",
			Help:      "Jobs deleted",
		}),
		JobViews: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_views_total",
			Help:      "Job detail views",
		}),
		MatchingRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matching_requests_total",
			Help:      "Calls to the matching service by endpoint and upstream status",
		}, []string{"endpoint", "status"}),
		MatchingLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matching_latency_seconds",
			Help:      "Matching service latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"endpoint"}),
		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "File uploads by result",
		}, []string{"result"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter by scope",
		}, []string{"scope"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) HRRegistered(outcome string) {
	if m == nil {
		return
	}
	m.HRRegistrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) HRDecided(status string) {
	if m == nil {
		return
	}
	m.HRDecisions.WithLabelValues(status).Inc()
}

func (m *Metrics) JobCreated() {
	if m == nil {
		return
	}
	m.JobsCreated.Inc()
}

func (m *Metrics) JobDeleted() {
	if m == nil {
		return
	}
	m.JobsDeleted.Inc()
}

func (m *Metrics) JobViewed() {
	if m == nil {
		return
	}
	m.JobViews.Inc()
}

// ObserveMatching records one matching call; status 0 means a transport failure.
func (m *Metrics) ObserveMatching(endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.MatchingRequests.WithLabelValues(endpoint, label).Inc()
	m.MatchingLatency.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) Upload(result string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) Limited(scope string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(scope).Inc()
}
