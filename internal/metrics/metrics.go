package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
)

type Metrics struct {
	// GenerationsTotal counts dispatcher calls by outcome.
	GenerationsTotal *prometheus.CounterVec
	// CreditsChargedTotal counts credits deducted from the profile.
	CreditsChargedTotal prometheus.Counter
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer in
// the server and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GenerationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "genr8",
				Subsystem: "generation",
				Name:      "requests_total",
				Help:      "Image generations by outcome",
			},
			[]string{"outcome"},
		),
		CreditsChargedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "genr8",
				Subsystem: "studio",
				Name:      "credits_charged_total",
				Help:      "Credits charged for generations",
			},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "genr8",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "genr8",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"method", "route"},
		),
	}
}

func (m *Metrics) ObserveGeneration(fallback bool) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if fallback {
		outcome = OutcomeFallback
	}
	m.GenerationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveCharge(credits int) {
	if m == nil || credits <= 0 {
		return
	}
	m.CreditsChargedTotal.Add(float64(credits))
}
