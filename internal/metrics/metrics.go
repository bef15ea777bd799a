// Package metrics exposes Prometheus metrics for the assessment service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chaspy/toeic-assessment-poc/internal/scoring"
)

const namespace = "toeic_assessment"

// Metrics holds the service's collectors on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	SessionsStarted  prometheus.Counter
	AnswersRecorded  *prometheus.CounterVec
	SessionsFinished *prometheus.CounterVec
	GeneratorCalls   *prometheus.CounterVec
	GeneratorLatency *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5, 15, 30},
			},
			[]string{"method", "route"},
		),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Assessment sessions started",
		}),
		AnswersRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_recorded_total",
				Help:      "Answers recorded, by correctness",
			},
			[]string{"correct"},
		),
		SessionsFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_finished_total",
				Help:      "Finished sessions, by finish mode and band",
			},
			[]string{"mode", "band"},
		),
		GeneratorCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generator_calls_total",
				Help:      "Feedback generator calls, by purpose and outcome",
			},
			[]string{"purpose", "outcome"},
		),
		GeneratorLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generator_duration_seconds",
				Help:      "Feedback generator latency",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"purpose"},
		),
	}

	m.registry.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.SessionsStarted,
		m.AnswersRecorded,
		m.SessionsFinished,
		m.GeneratorCalls,
		m.GeneratorLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterSessionGauge exposes the number of live sessions, read from fn on
// every scrape.
func (m *Metrics) RegisterSessionGauge(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_live",
			Help:      "Sessions currently held in memory",
		},
		func() float64 { return float64(fn()) },
	))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.RequestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) SessionStarted() {
	m.SessionsStarted.Inc()
}

func (m *Metrics) AnswerRecorded(correct bool) {
	m.AnswersRecorded.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

func (m *Metrics) SessionFinished(mode string, band scoring.Band) {
	m.SessionsFinished.WithLabelValues(mode, string(band)).Inc()
}

func (m *Metrics) GeneratorCalled(purpose string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.GeneratorCalls.WithLabelValues(purpose, outcome).Inc()
	m.GeneratorLatency.WithLabelValues(purpose).Observe(elapsed.Seconds())
}
