package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio"

// Run results.
const (
	ResultSuccess      = "success"
	ResultSetupFailure = "setup_failure"
	ResultEmpty        = "empty"
	ResultError        = "error"
)

// Recorder implements port.MetricsRecorder using Prometheus.
type Recorder struct {
	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Histogram
	queryFailures  *prometheus.CounterVec
	totalValueUSD  prometheus.Gauge
	positionsCount prometheus.Gauge
	leafFetches    *prometheus.CounterVec
}

// New creates a recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "aggregation_runs_total",
				Help:      "Total number of aggregation runs by result",
			},
			[]string{"result"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "aggregation_duration_seconds",
				Help:      "Duration of aggregation runs in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		queryFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_failures_total",
				Help:      "Ledger queries that failed and were absorbed",
			},
			[]string{"query"},
		),
		totalValueUSD: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "total_value_usd",
				Help:      "Total value of the last completed snapshot",
			},
		),
		positionsCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "positions",
				Help:      "Number of positions in the last completed snapshot",
			},
		),
		leafFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "leaf_fetches_total",
				Help:      "Catalog and price oracle fetches by client and result",
			},
			[]string{"client", "result"},
		),
	}
}

// RecordRun records one aggregation run.
func (r *Recorder) RecordRun(result string, duration time.Duration) {
	r.runsTotal.WithLabelValues(result).Inc()
	r.runDuration.Observe(duration.Seconds())
}

// RecordQueryFailure records an absorbed ledger query failure.
func (r *Recorder) RecordQueryFailure(query string) {
	r.queryFailures.WithLabelValues(query).Inc()
}

// RecordSnapshot records the shape of the last completed snapshot.
func (r *Recorder) RecordSnapshot(totalValueUSD float64, positions int) {
	r.totalValueUSD.Set(totalValueUSD)
	r.positionsCount.Set(float64(positions))
}

// RecordLeafFetch records a catalog or price oracle fetch outcome.
func (r *Recorder) RecordLeafFetch(client, result string) {
	r.leafFetches.WithLabelValues(client, result).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordRun(string, time.Duration) {}
func (Nop) RecordQueryFailure(string) {}
func (Nop) RecordSnapshot(float64, int) {}
func (Nop) RecordLeafFetch(string, string) {}
