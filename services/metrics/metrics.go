// Package metricsvc exposes the progress & login metrics to Prometheus.
package metricsvc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nexusalpri/academy/core/progress"
)

// Login outcomes
const (
	LoginSucceeded   = "success"
	LoginFailed      = "failure"
	LoginRateLimited = "rate_limited"
)

type Metrics struct {
	reg           *prometheus.Registry
	interactions  *prometheus.CounterVec
	consolidation *prometheus.CounterVec
	percentage    prometheus.Histogram
	logins        *prometheus.CounterVec
}

var _ progress.Observer = (*Metrics)(nil) // interface compliance check

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		interactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_lesson_interactions_total",
			Help: "Lesson interactions recorded, by type and outcome.",
		}, []string{"type", "outcome"}),
		consolidation: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_progress_consolidations_total",
			Help: "Progress consolidations, by outcome.",
		}, []string{"outcome"}),
		percentage: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "academy_progress_percentage",
			Help:    "Consolidated course completion percentages.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "academy_login_attempts_total",
			Help: "Login attempts, by outcome.",
		}, []string{"outcome"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) InteractionRecorded(typ progress.InteractionType, err error) {
	if !typ.Valid() {
		typ = "invalid"
	}
	m.interactions.WithLabelValues(string(typ), outcome(err)).Inc()
}

func (m *Metrics) ProgressConsolidated(pct float64, err error) {
	m.consolidation.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		m.percentage.Observe(pct)
	}
}

func (m *Metrics) LoginAttempted(result string) {
	m.logins.WithLabelValues(result).Inc()
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
