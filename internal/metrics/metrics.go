package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the collectors
const (
	OutcomePass  = "pass"
	OutcomeFail  = "fail"
	OutcomeError = "error"
	OutcomeNone  = "none"
)

// Metrics holds the collectors exported on /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	CheckRuns     *prometheus.CounterVec
	CheckDuration *prometheus.HistogramVec
	Predictions   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		CheckRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "datacheck",
				Name:      "check_runs_total",
				Help:      "Data-quality check runs by check and outcome.",
			}, []string{"check", "outcome"}),
		CheckDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "datacheck",
				Name:      "check_duration_seconds",
				Help:      "Time spent running a data-quality check.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"check"}),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "datacheck",
				Name:      "predictions_total",
				Help:      "Prediction service calls by submission path and outcome.",
			}, []string{"path", "outcome"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(m.CheckRuns, m.CheckDuration, m.Predictions)
	return m
}

// ObserveCheck records one check run
func (m *Metrics) ObserveCheck(check, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CheckRuns.WithLabelValues(check, outcome).Inc()
	m.CheckDuration.WithLabelValues(check).Observe(elapsed.Seconds())
}

// CountPrediction records one call to the prediction service
func (m *Metrics) CountPrediction(path, outcome string) {
	if m == nil {
		return
	}
	m.Predictions.WithLabelValues(path, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
