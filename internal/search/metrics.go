package search

import "github.com/prometheus/client_golang/prometheus"

// Metrics wires GA observability into Prometheus, the way the teacher's
// own cmd/main.go registers CounterVec/GaugeVec/HistogramVec metrics: one
// histogram of per-generation best fitness, one counter of accept/reject
// outcomes during the search, and a gauge of elapsed time-budget
// fraction.
type Metrics struct {
	GenerationFitness prometheus.Histogram
	AcceptOutcomes    *prometheus.CounterVec
	ElapsedFraction   prometheus.Gauge
}

// NewMetrics registers every GA metric against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with any other
// registration in the process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GenerationFitness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vnf_ga_placer",
			Name:      "generation_best_fitness",
			Help:      "Best chromosome fitness observed at the end of each generation.",
			Buckets:   prometheus.LinearBuckets(0, 100, 20),
		}),
		AcceptOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vnf_ga_placer",
			Name:      "accept_outcomes_total",
			Help:      "Accepter outcomes during the search, labeled accepted/rejected.",
		}, []string{"outcome"}),
		ElapsedFraction: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vnf_ga_placer",
			Name:      "elapsed_time_budget_fraction",
			Help:      "Fraction of the configured time_limit elapsed so far.",
		}),
	}
	reg.MustRegister(m.GenerationFitness, m.AcceptOutcomes, m.ElapsedFraction)
	return m
}
