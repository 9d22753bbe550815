// Package metrics provides Prometheus instrumentation for carflow pipelines.
//
// Every Collector owns a private registry so tests and repeated CLI runs do
// not collide on the default one. After a command finishes the collected
// values can be written to a node-exporter textfile:
//
//	collector := metrics.NewCollector()
//	collector.RowsProcessed("convert", table.Len())
//	timer := metrics.NewTimer("convert")
//	...
//	collector.ObserveDuration("convert", timer.Stop())
//	if err := collector.WriteTextfile("/var/lib/node_exporter/carflow.prom"); err != nil {
//	    ...
//	}
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the carflow metric families
type Collector struct {
	registry         *prometheus.Registry
	rowsProcessed    *prometheus.CounterVec
	pipelineErrors   *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	chartCategories  *prometheus.GaugeVec
	startTime        time.Time
}

// NewCollector creates a collector registered on a fresh registry
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		rowsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carflow_rows_processed_total",
				Help: "Total number of table rows read by a pipeline",
			},
			[]string{"pipeline"},
		),
		pipelineErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "carflow_pipeline_errors_total",
				Help: "Total number of failed pipeline runs by error type",
			},
			[]string{"pipeline", "type"},
		),
		pipelineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "carflow_pipeline_duration_seconds",
				Help: "Wall-clock duration of pipeline runs",
				Buckets: []float64{
					0.001, // 1ms - tiny inputs
					0.01,
					0.1,
					1,  // chart rasterization
					10, // large files
				},
			},
			[]string{"pipeline"},
		),
		chartCategories: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "carflow_chart_categories",
				Help: "Number of distinct categories in the last chart rendered for a column",
			},
			[]string{"column"},
		),
		startTime: time.Now(),
	}
}

// Registry exposes the underlying registry, mainly for tests and for
// serving the metrics from a host process.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// RowsProcessed adds n rows to the pipeline's counter
func (c *Collector) RowsProcessed(pipeline string, n int) {
	c.rowsProcessed.WithLabelValues(pipeline).Add(float64(n))
}

// PipelineError counts a failed run
func (c *Collector) PipelineError(pipeline, errType string) {
	c.pipelineErrors.WithLabelValues(pipeline, errType).Inc()
}

// ObserveDuration records how long a run took
func (c *Collector) ObserveDuration(pipeline string, d time.Duration) {
	c.pipelineDuration.WithLabelValues(pipeline).Observe(d.Seconds())
}

// ChartCategories records the number of bars drawn for column
func (c *Collector) ChartCategories(column string, n int) {
	c.chartCategories.WithLabelValues(column).Set(float64(n))
}

// RowsCounter returns the rows counter of pipeline
func (c *Collector) RowsCounter(pipeline string) prometheus.Counter {
	return c.rowsProcessed.WithLabelValues(pipeline)
}

// ErrorsCounter returns the failure counter of pipeline for errType
func (c *Collector) ErrorsCounter(pipeline, errType string) prometheus.Counter {
	return c.pipelineErrors.WithLabelValues(pipeline, errType)
}

// WriteTextfile writes every metric family to path in the text exposition
// format read by the node exporter's textfile collector. The file is
// replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the label the timer was created with
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
