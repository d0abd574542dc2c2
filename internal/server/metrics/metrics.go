// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Session event names.
const (
	EventRegister = "register"
	EventLogin    = "login"
	EventRefresh  = "refresh"
	EventPersist  = "persist"
	EventLogout   = "logout"
	EventReset    = "reset"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	Registry        *prometheus.Registry
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	SessionEvents   *prometheus.CounterVec
	GuardRejections *prometheus.CounterVec
}

// New registers all collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rms_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rms_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rms_session_events_total",
			Help: "Session lifecycle events by outcome.",
		}, []string{"event", "outcome"}),
		GuardRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rms_access_guard_rejections_total",
			Help: "Requests rejected by the access guard.",
		}, []string{"reason"}),
	}

	m.Registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.SessionEvents,
		m.GuardRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Session records one session event. A nil error counts as success.
func (m *Metrics) Session(event string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.SessionEvents.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) GuardRejected(reason string) {
	m.GuardRejections.WithLabelValues(reason).Inc()
}
