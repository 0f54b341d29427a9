// Package metrics records pipeline stage timings and row counts.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives one observation per pipeline stage.
type Recorder interface {
	Observe(ctx context.Context, stage string, success bool, duration time.Duration)
	AddRows(stage string, n int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Observe(context.Context, string, bool, time.Duration) {}
func (Nop) AddRows(string, int)                                  {}

// PrometheusRecorder keeps stage metrics in its own registry so that
// several pipelines in one process do not collide.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

// NewPrometheusRecorder registers the isoplot collectors on a fresh registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isoplot_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage", "outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isoplot_rows_processed_total",
			Help: "Rows produced by pipeline stages.",
		}, []string{"stage"}),
	}
	r.registry.MustRegister(r.duration, r.rows)
	return r
}

// Registry exposes the underlying registry, e.g. for tests.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

// Observe records a stage outcome.
func (r *PrometheusRecorder) Observe(_ context.Context, stage string, success bool, duration time.Duration) {
	if stage == "" {
		return
	}
	outcome := "error"
	if success {
		outcome = "success"
	}
	r.duration.WithLabelValues(stage, outcome).Observe(duration.Seconds())
}

// AddRows adds n to the row counter of stage.
func (r *PrometheusRecorder) AddRows(stage string, n int) {
	if stage == "" || n <= 0 {
		return
	}
	r.rows.WithLabelValues(stage).Add(float64(n))
}

// WriteTextfile dumps the registry in the text exposition format, suitable
// for the node exporter textfile collector.
func (r *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
