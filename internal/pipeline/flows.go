package pipeline

import (
	"context"

	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/connector/registry"

	// connector registration
	_ "github.com/ajitpratap0/carflow/pkg/connector/destinations"
	_ "github.com/ajitpratap0/carflow/pkg/connector/sources"
)

// Convert flattens the record array of cfg.Converter.Input into the CSV file
// cfg.Converter.Output, without the cfg.Converter.Exclude columns.
func Convert(ctx context.Context, cfg *config.Config, deps Deps) (*Result, error) {
	return run(ctx, ConvertPipeline, "json", "csv", cfg, cfg.Converter.Input, deps,
		ExcludeColumns(cfg.Converter.Exclude...))
}

// Visualize renders the configured bar charts for the table in
// cfg.Visualizer.Input. Result.Rows is the table's entry count.
func Visualize(ctx context.Context, cfg *config.Config, deps Deps) (*Result, error) {
	return run(ctx, VisualizePipeline, "csv", "chart", cfg, cfg.Visualizer.Input, deps)
}

func run(ctx context.Context, name, sourceName, destName string, cfg *config.Config, input string, deps Deps, transforms ...core.Transform) (*Result, error) {
	source, err := registry.CreateSource(sourceName, cfg)
	if err != nil {
		return nil, err
	}
	destination, err := registry.CreateDestination(destName, cfg)
	if err != nil {
		return nil, err
	}

	p := NewSimplePipeline(name, source, destination, deps)
	for _, t := range transforms {
		p.AddTransform(t)
	}
	result, err := p.Run(ctx)
	if err != nil {
		return nil, err
	}
	result.Input = input
	return result, nil
}

// ConvertAndVisualize converts, then charts the freshly written CSV file
// with the converter's delimiter and compression. Visualization is skipped
// when the conversion fails.
func ConvertAndVisualize(ctx context.Context, cfg *config.Config, deps Deps) ([]*Result, error) {
	converted, err := Convert(ctx, cfg, deps)
	if err != nil {
		return nil, err
	}

	next := *cfg
	next.Visualizer.Input = cfg.Converter.Output
	next.Visualizer.Delimiter = cfg.Converter.Delimiter
	next.Visualizer.Compression = cfg.Converter.Compression

	visualized, err := Visualize(ctx, &next, deps)
	if err != nil {
		return []*Result{converted}, err
	}
	return []*Result{converted, visualized}, nil
}
