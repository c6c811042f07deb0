package bench

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Evaluation paths used as metric labels.
const (
	PathMemory = "memory"
	PathSQL    = "sql"
)

// Metrics holds the benchmark's Prometheus collectors.
type Metrics struct {
	// EvalDuration is the time one filter takes on one path.
	EvalDuration *prometheus.HistogramVec
	// Mismatches counts filters whose paths disagreed.
	Mismatches *prometheus.CounterVec
	// Matched is the number of rows a filter selected on its last run.
	Matched *prometheus.GaugeVec
	// CRUDDuration is the time of one blog CRUD phase.
	CRUDDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EvalDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specbench_filter_eval_duration_seconds",
				Help:    "Filter evaluation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"filter", "path"},
		),
		Mismatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "specbench_filter_mismatches_total",
				Help: "Number of runs where in-memory and SQL results differed",
			},
			[]string{"filter"},
		),
		Matched: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "specbench_filter_matched_rows",
				Help: "Rows matched by a filter on its last run",
			},
			[]string{"filter"},
		),
		CRUDDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "specbench_crud_duration_seconds",
				Help:    "Blog CRUD phase latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}
