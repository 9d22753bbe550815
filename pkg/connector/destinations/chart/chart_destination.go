// Package chart provides the destination that renders a table's category
// columns as bar chart images.
package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/ajitpratap0/carflow/pkg/analysis"
	"github.com/ajitpratap0/carflow/pkg/chart"
	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/errors"
	"github.com/ajitpratap0/carflow/pkg/logger"
	"github.com/ajitpratap0/carflow/pkg/metrics"
	"github.com/ajitpratap0/carflow/pkg/models"
)

// Rendered describes one saved chart
type Rendered struct {
	Column string
	Path   string
	Spec   *chart.Spec
}

// ChartDestination renders every configured chart of the visualizer section
type ChartDestination struct {
	config   config.VisualizerConfig
	metrics  *metrics.Collector
	logger   *zap.Logger
	rendered []Rendered
}

var _ core.Destination = (*ChartDestination)(nil)

// NewChartDestination creates a chart destination from the visualizer section of cfg
func NewChartDestination(cfg *config.Config) (core.Destination, error) {
	if err := cfg.Visualizer.Validate(); err != nil {
		return nil, err
	}
	return &ChartDestination{config: cfg.Visualizer}, nil
}

// Name returns the connector name
func (d *ChartDestination) Name() string {
	return "chart"
}

// SetMetrics attaches a collector that receives the per-column category counts
func (d *ChartDestination) SetMetrics(m *metrics.Collector) {
	d.metrics = m
}

// Initialize creates the output directory
func (d *ChartDestination) Initialize(ctx context.Context) error {
	d.logger = logger.WithContext(ctx).With(zap.String("connector", d.Name()), zap.String("output_dir", d.config.OutputDir))

	if err := os.MkdirAll(d.config.OutputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeUnexpected, "failed to create output directory").WithDetail("path", d.config.OutputDir)
	}
	return nil
}

// Write renders one chart per configured column, in order. Every column is
// checked before the first chart is drawn, so a missing column leaves no
// partial output behind.
func (d *ChartDestination) Write(ctx context.Context, table *models.Table) error {
	var missing []string
	for _, col := range d.config.Columns() {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.Newf(errors.ErrorTypeUnexpected, "column(s) not found: %s", strings.Join(missing, ", ")).
			WithDetail("columns", missing)
	}

	total := table.Len()
	width := vg.Length(d.config.Width) * vg.Inch
	height := vg.Length(d.config.Height) * vg.Inch

	for _, ch := range d.config.Charts {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeUnexpected, "render cancelled")
		}

		values, err := table.Column(ch.Column)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeUnexpected, "failed to read column")
		}
		ft := analysis.Count(analysis.Apply(values, analysis.NewNormalizer(ch)))

		spec := chart.Build(ft, chart.Options{
			Title:     ch.Title,
			Column:    ch.Column,
			Total:     total,
			ColorBars: ch.ColorBars,
		})

		path := d.pathFor(ch.Column)
		if err := chart.Save(spec, path, width, height); err != nil {
			return errors.Wrap(err, errors.ErrorTypeUnexpected, "failed to render chart").WithDetail("path", path)
		}
		d.rendered = append(d.rendered, Rendered{Column: ch.Column, Path: path, Spec: spec})

		if d.metrics != nil {
			d.metrics.ChartCategories(ch.Column, len(ft))
		}
		d.logger.Debug("chart rendered",
			zap.String("column", ch.Column),
			zap.Int("categories", len(ft)),
			zap.Int("counted", ft.Total()),
			zap.String("path", path))
	}
	return nil
}

func (d *ChartDestination) pathFor(column string) string {
	name := fmt.Sprintf("%s.%s", column, strings.ToLower(d.config.Format))
	return filepath.Join(d.config.OutputDir, filepath.Base(name))
}

// Rendered returns the charts written so far
func (d *ChartDestination) Rendered() []Rendered {
	return d.rendered
}

// Outputs returns the chart paths in render order
func (d *ChartDestination) Outputs() []string {
	paths := make([]string, len(d.rendered))
	for i, r := range d.rendered {
		paths[i] = r.Path
	}
	return paths
}

// Close is a no-op; every chart file is closed as soon as it is saved.
func (d *ChartDestination) Close(ctx context.Context) error {
	return nil
}
