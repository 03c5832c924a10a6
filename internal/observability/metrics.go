package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service's prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	deletions       *prometheus.CounterVec
	blobDeletions   *prometheus.CounterVec
	suspensions     prometheus.Counter
}

// NewMetrics builds and registers collectors on reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobfinder_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jobfinder_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobfinder_http_errors_total",
			Help: "HTTP errors by route, method and error code",
		}, []string{"route", "method", "code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobfinder_listing_transitions_total",
			Help: "Applied listing status transitions",
		}, []string{"from", "to"}),
		deletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobfinder_listing_deletions_total",
			Help: "Listing deletion attempts by result",
		}, []string{"result"}),
		blobDeletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jobfinder_blob_deletions_total",
			Help: "Blob deletions by result",
		}, []string{"result"}),
		suspensions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jobfinder_user_suspensions_total",
			Help: "Accounts suspended",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.requestDuration, m.errors, m.transitions, m.deletions, m.blobDeletions, m.suspensions)
	}
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordTransition counts an applied listing status change.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// RecordDeletion counts a listing deletion outcome ("ok", "rejected", "failed").
func (m *Metrics) RecordDeletion(result string) {
	if m == nil {
		return
	}
	m.deletions.WithLabelValues(result).Inc()
}

// RecordBlobDeletions counts blob deletion outcomes.
func (m *Metrics) RecordBlobDeletions(ok, failed int) {
	if m == nil {
		return
	}
	m.blobDeletions.WithLabelValues("ok").Add(float64(ok))
	m.blobDeletions.WithLabelValues("failed").Add(float64(failed))
}

// RecordSuspension counts a suspended account.
func (m *Metrics) RecordSuspension() {
	if m == nil {
		return
	}
	m.suspensions.Inc()
}
