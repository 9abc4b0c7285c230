// Package metrics exports ledger activity to prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records operation timings, outcomes and money volume.
type Collector struct {
	duration *prometheus.HistogramVec
	results  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	volume   *prometheus.CounterVec
}

// NewCollector creates the ledger metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kosh",
			Name:      "operation_duration_seconds",
			Help:      "Duration of ledger operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kosh",
			Name:      "operation_results_total",
			Help:      "Ledger operation outcomes.",
		}, []string{"operation", "result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kosh",
			Name:      "operation_errors_total",
			Help:      "Ledger operation failures by error code.",
		}, []string{"operation", "code"}),
		volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kosh",
			Name:      "ledger_volume_minor_units_total",
			Help:      "Money moved through the ledger in minor units.",
		}, []string{"type"}),
	}
	reg.MustRegister(c.duration, c.results, c.errors, c.volume)
	return c
}

func (c *Collector) RecordOperationDuration(operation string, d time.Duration) {
	c.duration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *Collector) RecordOperationResult(operation, result string) {
	c.results.WithLabelValues(operation, result).Inc()
}

func (c *Collector) RecordError(operation, code string) {
	c.errors.WithLabelValues(operation, code).Inc()
}

func (c *Collector) RecordTransaction(txType string, amount int64) {
	c.volume.WithLabelValues(txType).Add(float64(amount))
}
