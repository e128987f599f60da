package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewMetrics registers the generation collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "verigen",
			Name:      "generations_total",
			Help:      "Generations by provider and result source (generated, offline, error).",
		}, []string{"provider", "source"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "verigen",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of generation requests.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
		}, []string{"provider"}),
	}
	m.registry.MustRegister(m.generations, m.latency)
	return m
}

func (m *Metrics) observe(provider, source string, d time.Duration) {
	m.generations.WithLabelValues(provider, source).Inc()
	m.latency.WithLabelValues(provider).Observe(d.Seconds())
}
