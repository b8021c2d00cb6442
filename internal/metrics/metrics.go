package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors exported at /metrics. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	UpstreamCounter  *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	ActiveSessions   prometheus.Gauge
	Submissions      *prometheus.CounterVec
	JobRuns          *prometheus.CounterVec
	BackendUp        prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		),
		UpstreamCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordapi_requests_total",
				Help: "Backend API calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordapi_request_duration_seconds",
				Help:    "Latency of backend API calls",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"operation"},
		),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "practice_sessions_active",
			Help: "Practice page instances currently held in memory",
		}),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "practice_submissions_total",
				Help: "Sentence submissions by outcome",
			},
			[]string{"outcome"},
		),
		JobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "background_job_runs_total",
				Help: "Scheduled job executions by job and outcome",
			},
			[]string{"job", "outcome"},
		),
		BackendUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wordapi_up",
			Help: "1 if the last backend probe succeeded",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.UpstreamCounter,
		m.UpstreamDuration,
		m.ActiveSessions,
		m.Submissions,
		m.JobRuns,
		m.BackendUp,
	)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.RequestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveUpstream records one backend API call.
func (m *Metrics) ObserveUpstream(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamCounter.WithLabelValues(operation, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveSubmission counts a submission outcome ("scored", "rejected", "failed", ...).
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// SetActiveSessions updates the session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// ObserveJob counts one scheduled job run.
func (m *Metrics) ObserveJob(job string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
}

func (m *Metrics) SetBackendUp(up bool) {
	if m == nil {
		return
	}
	if up {
		m.BackendUp.Set(1)
		return
	}
	m.BackendUp.Set(0)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
