// Package metrics exposes Prometheus collectors for materialization runs
// and summary reads. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "jobskills"

// Run results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors registered by New.
type Metrics struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	relationRows *prometheus.GaugeVec
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	retries      prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "materialize",
			Name:      "runs_total",
			Help:      "Total number of materialization runs by result",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "materialize",
			Name:      "run_duration_seconds",
			Help:      "Duration of materialization runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		}),
		relationRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "relation_rows",
			Help:      "Rows written to each relation by the latest materialization",
		}, []string{"relation"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "cache_hits_total",
			Help:      "Summary reads served from cache",
		}, []string{"relation"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "cache_misses_total",
			Help:      "Summary reads that went to the store",
		}, []string{"relation"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "materialize_retries_total",
			Help:      "Reads that found a relation missing and materialized before retrying",
		}),
	}
	m.registry.MustRegister(m.runs, m.runDuration, m.relationRows, m.cacheHits, m.cacheMisses, m.retries)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRun records one materialization run.
func (m *Metrics) ObserveRun(err error, d time.Duration) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(d.Seconds())
}

// SetRelationRows records the row count written to relation.
func (m *Metrics) SetRelationRows(relation string, rows int) {
	if m == nil {
		return
	}
	m.relationRows.WithLabelValues(relation).Set(float64(rows))
}

// CacheHit counts a cached read of relation.
func (m *Metrics) CacheHit(relation string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(relation).Inc()
}

// CacheMiss counts an uncached read of relation.
func (m *Metrics) CacheMiss(relation string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(relation).Inc()
}

// Retry counts a read that triggered materialization.
func (m *Metrics) Retry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

// WriteTextfile writes every collector to path in the node_exporter
// textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
