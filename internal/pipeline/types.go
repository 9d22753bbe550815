package pipeline

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/carflow/pkg/metrics"
)

// Pipeline names used in logs, metrics and spans
const (
	ConvertPipeline   = "convert"
	VisualizePipeline = "visualize"
)

// Deps carries the ambient services a pipeline reports to. Zero values are
// fine: a nil logger falls back to the global one, nil metrics and tracer
// are skipped.
type Deps struct {
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Tracer  trace.Tracer
}

// Result summarizes a successful run
type Result struct {
	Pipeline string
	// Input is the path the source read
	Input string
	// Rows is the number of table rows read
	Rows int
	// Columns is the header of the table that reached the destination
	Columns []string
	// Outputs are the files the destination wrote, in order
	Outputs  []string
	Duration time.Duration
}
