package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajitpratap0/carflow/internal/pipeline"
	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/connector/core"
	"github.com/ajitpratap0/carflow/pkg/connector/registry"
)

func (a *app) convertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Flatten the records array of a JSON file into a CSV file",
		Long: `Flatten the records array (default "cars") of a JSON document into a CSV
file. Nested objects become dot-joined columns; excluded columns are dropped.

Example:
  carflow convert --input data.json --output data.csv --exclude image`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.Convert(cmd.Context(), a.cfg, a.deps())
			a.report(convertMessage(a.cfg, result, err), err)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.String("input", "data.json", "JSON document to read")
	fs.String("output", "data.csv", "CSV file to create or overwrite")
	fs.String("array-key", "cars", "Top-level key holding the records array")
	fs.StringSlice("exclude", []string{"image"}, "Column names to drop")
	fs.String("delimiter", ",", "Output field delimiter")
	fs.String("compression", "", "Compression (auto, none, gzip, zstd, lz4, s2); inferred from extensions by default")
	a.bind(cmd, map[string]string{
		"converter.input":       "input",
		"converter.output":      "output",
		"converter.array_key":   "array-key",
		"converter.exclude":     "exclude",
		"converter.delimiter":   "delimiter",
		"converter.compression": "compression",
	}, false)
	return cmd
}

func (a *app) visualizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Render sorted category-count bar charts from a CSV file",
		Long: `Render one bar chart per configured column (manufacturer, countryOfOrigin
and color by default) from a delimited file. Charts are saved as
<output-dir>/<column>.<format>.

Example:
  carflow visualize --input data.csv --output-dir charts --format svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.Visualize(cmd.Context(), a.cfg, a.deps())
			a.report(visualizeMessage(a.cfg.Visualizer.Input, result, err), err)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.String("input", "data.csv", "Delimited file to read")
	fs.String("delimiter", ",", "Input field delimiter; a single character, \\t for tab")
	fs.String("output-dir", ".", "Directory receiving the chart images")
	fs.String("format", "png", "Image format (png, svg, pdf, jpg)")
	fs.Float64("width", 12, "Chart width in inches")
	fs.Float64("height", 6, "Chart height in inches")
	fs.String("compression", "", "Input compression; inferred from the extension by default")
	a.bind(cmd, map[string]string{
		"visualizer.input":       "input",
		"visualizer.delimiter":   "delimiter",
		"visualizer.output_dir":  "output-dir",
		"visualizer.format":      "format",
		"visualizer.width":       "width",
		"visualizer.height":      "height",
		"visualizer.compression": "compression",
	}, false)
	return cmd
}

func (a *app) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Convert, then visualize the converted file",
		Long: `Run both pipelines: convert the JSON input, then render the charts from the
CSV file it produced. Converter and visualizer settings come from the
configuration file, environment and defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := pipeline.ConvertAndVisualize(cmd.Context(), a.cfg, a.deps())
			if len(results) == 0 {
				a.report(convertMessage(a.cfg, nil, err), err)
				return nil
			}
			a.report(convertMessage(a.cfg, results[0], nil), nil)

			var visualized *pipeline.Result
			if len(results) > 1 {
				visualized = results[1]
			}
			a.report(visualizeMessage(a.cfg.Converter.Output, visualized, err), err)
			return nil
		},
	}
}

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "list",
		Short:       "List available connectors",
		Annotations: map[string]string{skipSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, "Available Source Connectors:")
			for _, name := range registry.ListSources() {
				fmt.Fprintln(a.stdout, connectorLine(core.ConnectorTypeSource, name))
			}
			fmt.Fprintln(a.stdout, "\nAvailable Destination Connectors:")
			for _, name := range registry.ListDestinations() {
				fmt.Fprintln(a.stdout, connectorLine(core.ConnectorTypeDestination, name))
			}
		},
	}
}

func connectorLine(t core.ConnectorType, name string) string {
	if info, ok := registry.Info(t, name); ok && info.Description != "" {
		return fmt.Sprintf("  - %s: %s", name, info.Description)
	}
	return "  - " + name
}

func (a *app) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	var path string
	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the default configuration as YAML",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists; use --force to overwrite", path)
				}
			}
			if err := config.Save(path, config.NewConfig()); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote default configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "carflow.yaml", "Where to write the configuration")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
