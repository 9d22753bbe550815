// Package pipeline runs carflow's source → transform → destination flows.
//
// A run is sequential: the source reads the whole table, transforms rewrite
// it in order, and the destination writes it. Convert and Visualize wire the
// registered connectors for the two standard flows.
//
// # Basic Usage
//
//	result, err := pipeline.Convert(ctx, cfg, pipeline.Deps{Metrics: collector})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Outputs)
package pipeline

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/errors"
	"github.com/ajitpratap0/carflow/pkg/logger"
	"github.com/ajitpratap0/carflow/pkg/metrics"
	"github.com/ajitpratap0/carflow/pkg/observability"
)

// SimplePipeline moves one table from a source to a destination
type SimplePipeline struct {
	name        string
	source      core.Source
	destination core.Destination
	transforms  []core.Transform

	base    *zap.Logger
	logger  *zap.Logger
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// metricsAware is implemented by destinations that report their own metrics
type metricsAware interface {
	SetMetrics(m *metrics.Collector)
}

// NewSimplePipeline creates a pipeline. name labels its logs, metrics and
// spans.
func NewSimplePipeline(name string, source core.Source, destination core.Destination, deps Deps) *SimplePipeline {
	log := deps.Logger
	if log == nil {
		log = logger.Get()
	}
	return &SimplePipeline{
		name:        name,
		source:      source,
		destination: destination,
		base:        log,
		logger:      log.With(zap.String(string(logger.PipelineKey), name)),
		metrics:     deps.Metrics,
		tracer:      deps.Tracer,
	}
}

// AddTransform appends a transform. Transforms run in the order added.
func (p *SimplePipeline) AddTransform(t core.Transform) {
	p.transforms = append(p.transforms, t)
}

// Run executes the pipeline. Both connectors are closed on every path; a
// close failure is reported only when the run itself succeeded. Connectors
// log through logger.WithContext and inherit the pipeline's logger and name.
func (p *SimplePipeline) Run(ctx context.Context) (result *Result, err error) {
	ctx = logger.NewContext(context.WithValue(ctx, logger.PipelineKey, p.name), p.base)
	timer := metrics.NewTimer(p.name)
	ctx, span := observability.StartSpan(ctx, p.tracer, p.name,
		attribute.String("source", p.source.Name()),
		attribute.String("destination", p.destination.Name()))
	defer span.End()

	p.logger.Info("starting pipeline",
		zap.String("source", p.source.Name()),
		zap.String("destination", p.destination.Name()),
		zap.Int("transforms", len(p.transforms)))

	defer func() {
		duration := timer.Stop()
		if p.metrics != nil {
			p.metrics.ObserveDuration(p.name, duration)
		}
		if err != nil {
			errType := errors.TypeOf(err)
			if p.metrics != nil {
				p.metrics.PipelineError(p.name, string(errType))
			}
			span.Fail(err)
			p.logger.Error("pipeline failed",
				zap.String("error_type", string(errType)),
				zap.Duration("duration", duration),
				zap.Error(err))
			return
		}
		result.Duration = duration
		p.logger.Info("pipeline completed",
			zap.Int("rows", result.Rows),
			zap.Strings("outputs", result.Outputs),
			zap.Duration("duration", duration))
	}()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUnexpected, "pipeline cancelled")
	}

	defer func() {
		if cerr := p.source.Close(ctx); cerr != nil && err == nil {
			result, err = nil, errors.Wrap(cerr, errors.ErrorTypeUnexpected, "failed to close source")
		}
	}()
	if err := p.source.Initialize(ctx); err != nil {
		return nil, err
	}
	table, err := p.source.Read(ctx)
	if err != nil {
		return nil, err
	}
	rows := table.Len()
	span.AddEvent("source read", attribute.Int("rows", rows), attribute.Int("columns", len(table.Columns)))
	if p.metrics != nil {
		p.metrics.RowsProcessed(p.name, rows)
	}

	for i, transform := range p.transforms {
		table, err = transform(ctx, table)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeUnexpected, "transform failed").WithDetail("transform", i)
		}
	}

	if m, ok := p.destination.(metricsAware); ok && p.metrics != nil {
		m.SetMetrics(p.metrics)
	}
	defer func() {
		if cerr := p.destination.Close(ctx); cerr != nil && err == nil {
			result, err = nil, errors.Wrap(cerr, errors.ErrorTypeUnexpected, "failed to close destination")
		}
	}()
	if err := p.destination.Initialize(ctx); err != nil {
		return nil, err
	}
	if err := p.destination.Write(ctx, table); err != nil {
		return nil, err
	}

	outputs := p.destination.Outputs()
	span.SetAttribute("outputs", outputs)
	return &Result{
		Pipeline: p.name,
		Rows:     rows,
		Columns:  table.Columns,
		Outputs:  outputs,
	}, nil
}
