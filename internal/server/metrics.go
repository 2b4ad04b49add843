package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	Requests   *prometheus.CounterVec
	Generation prometheus.Histogram
	TasksTotal prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insights_requests_total",
				Help: "Analytics requests by outcome",
			},
			[]string{"outcome"},
		),
		Generation: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "insights_generation_duration_seconds",
				Help:    "Time spent producing an insight",
				Buckets: prometheus.DefBuckets,
			},
		),
		TasksTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "insights_tasks_loaded",
				Help: "Number of tasks in the last successful reload",
			},
		),
	}
	reg.MustRegister(m.Requests, m.Generation, m.TasksTotal)
	return m
}
