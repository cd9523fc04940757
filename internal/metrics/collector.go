package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "filecycle"

// Result label values for filecycle_rotations_total.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Collector holds the rotation metrics.
//
// Metrics:
//   - filecycle_rotations_total: rotations by result
//   - filecycle_rotation_duration_seconds: wall time of successful rotations
//   - filecycle_snapshots_pruned_total: snapshot folders removed by retention
//   - filecycle_prune_errors_total: snapshot folders retention failed to remove
//   - filecycle_snapshots: snapshot folders currently under the root
//   - filecycle_last_rotation_timestamp_seconds: unix time of the last successful rotation
type Collector struct {
	registry *prometheus.Registry

	rotationsTotal   *prometheus.CounterVec
	rotationDuration prometheus.Histogram
	prunedTotal      prometheus.Counter
	pruneErrorsTotal prometheus.Counter
	snapshots        prometheus.Gauge
	lastRotation     prometheus.Gauge
}

// NewCollector creates and registers the rotation metrics. A nil registry
// gets a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		rotationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rotations_total",
				Help:      "Total number of rotation attempts by result",
			},
			[]string{"result"},
		),
		rotationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rotation_duration_seconds",
				Help:      "Duration of successful rotations including retention pruning",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
			},
		),
		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_pruned_total",
				Help:      "Total number of snapshot folders removed by retention",
			},
		),
		pruneErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "prune_errors_total",
				Help:      "Total number of snapshot folders retention failed to remove",
			},
		),
		snapshots: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "snapshots",
				Help:      "Number of dated snapshot folders under the rotation root",
			},
		),
		lastRotation: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_rotation_timestamp_seconds",
				Help:      "Unix time of the last successful rotation",
			},
		),
	}

	registry.MustRegister(
		c.rotationsTotal,
		c.rotationDuration,
		c.prunedTotal,
		c.pruneErrorsTotal,
		c.snapshots,
		c.lastRotation,
	)

	// Pre-create result series so dashboards see zeros before the first rotation.
	for _, result := range []string{ResultSuccess, ResultError, ResultSkipped} {
		c.rotationsTotal.WithLabelValues(result)
	}
	return c
}

// RecordRotation records a finished rotation attempt.
func (c *Collector) RecordRotation(result string, duration time.Duration, finishedAt time.Time) {
	if c == nil {
		return
	}
	c.rotationsTotal.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		c.rotationDuration.Observe(duration.Seconds())
		c.lastRotation.Set(float64(finishedAt.Unix()))
	}
}

// RecordPrune records the outcome of a retention pass.
func (c *Collector) RecordPrune(removed, failed int) {
	if c == nil {
		return
	}
	if removed > 0 {
		c.prunedTotal.Add(float64(removed))
	}
	if failed > 0 {
		c.pruneErrorsTotal.Add(float64(failed))
	}
}

// SetSnapshots updates the current snapshot folder count.
func (c *Collector) SetSnapshots(count int) {
	if c == nil {
		return
	}
	c.snapshots.Set(float64(count))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler for the Prometheus metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(
		c.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}
