// Package config provides the configuration system for carflow.
// A single Config structure carries one section per pipeline plus the
// ambient logging and observability settings.
//
// The configuration is organized into logical sections:
//   - Converter: JSON input, CSV output, records key and excluded columns
//   - Visualizer: CSV input, delimiter, chart definitions and output format
//   - Logging: level, encoding and output paths
//   - Observability: metrics textfile and tracing
//
// Example usage:
//
//	cfg := config.NewConfig()
//	cfg.Visualizer.Delimiter = ";"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"strings"
	"unicode/utf8"

	"github.com/ajitpratap0/carflow/pkg/errors"
)

// Config is the root configuration structure.
type Config struct {
	// Converter settings for the JSON to CSV pipeline
	Converter ConverterConfig `yaml:"converter" json:"converter" mapstructure:"converter"`

	// Visualizer settings for the CSV to charts pipeline
	Visualizer VisualizerConfig `yaml:"visualizer" json:"visualizer" mapstructure:"visualizer"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" json:"logging" mapstructure:"logging"`

	// Observability settings for metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability" mapstructure:"observability"`

	// Strict makes the CLI exit non-zero when a pipeline fails
	Strict bool `yaml:"strict" json:"strict" mapstructure:"strict"`
}

// ConverterConfig contains the JSON to CSV pipeline settings.
type ConverterConfig struct {
	// Input is the JSON document to read
	Input string `yaml:"input" json:"input" mapstructure:"input"`
	// Output is the CSV file to create or overwrite
	Output string `yaml:"output" json:"output" mapstructure:"output"`
	// ArrayKey names the top-level member holding the records
	ArrayKey string `yaml:"array_key" json:"array_key" mapstructure:"array_key"`
	// Exclude lists flattened column names dropped from the output
	Exclude []string `yaml:"exclude" json:"exclude" mapstructure:"exclude"`
	// Separator joins nested key names
	Separator string `yaml:"separator" json:"separator" mapstructure:"separator"`
	// Delimiter separates output fields
	Delimiter string `yaml:"delimiter" json:"delimiter" mapstructure:"delimiter"`
	// Compression overrides the algorithm inferred from file extensions (auto, none, gzip, zstd, lz4, s2)
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
}

// VisualizerConfig contains the CSV to charts pipeline settings.
type VisualizerConfig struct {
	// Input is the delimited table to read
	Input string `yaml:"input" json:"input" mapstructure:"input"`
	// Delimiter separates input fields; exactly one character
	Delimiter string `yaml:"delimiter" json:"delimiter" mapstructure:"delimiter"`
	// Compression overrides the algorithm inferred from the input extension
	Compression string `yaml:"compression" json:"compression" mapstructure:"compression"`
	// OutputDir receives one image per chart
	OutputDir string `yaml:"output_dir" json:"output_dir" mapstructure:"output_dir"`
	// Format is the image format: png, svg, pdf, jpg
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// Width of each chart in inches
	Width float64 `yaml:"width" json:"width" mapstructure:"width"`
	// Height of each chart in inches
	Height float64 `yaml:"height" json:"height" mapstructure:"height"`
	// Charts lists the charts to render, in order
	Charts []ChartConfig `yaml:"charts" json:"charts" mapstructure:"charts"`
}

// ChartConfig describes one category-count bar chart.
type ChartConfig struct {
	// Column to count
	Column string `yaml:"column" json:"column" mapstructure:"column"`
	// Title drawn above the chart
	Title string `yaml:"title" json:"title" mapstructure:"title"`
	// Replace rewrites exact cell values before counting
	Replace []Replacement `yaml:"replace,omitempty" json:"replace,omitempty" mapstructure:"replace"`
	// FirstToken keeps only the first whitespace-delimited token of each cell
	FirstToken bool `yaml:"first_token,omitempty" json:"first_token,omitempty" mapstructure:"first_token"`
	// ColorBars fills each bar with the color its category names
	ColorBars bool `yaml:"color_bars,omitempty" json:"color_bars,omitempty" mapstructure:"color_bars"`
}

// Replacement maps one exact cell value to another.
type Replacement struct {
	From string `yaml:"from" json:"from" mapstructure:"from"`
	To   string `yaml:"to" json:"to" mapstructure:"to"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	// Level sets logging verbosity (debug, info, warn, error)
	Level string `yaml:"level" json:"level" mapstructure:"level"`
	// Format is json or console
	Format string `yaml:"format" json:"format" mapstructure:"format"`
	// OutputPaths are zap sink URLs or file paths
	OutputPaths []string `yaml:"output_paths,omitempty" json:"output_paths,omitempty" mapstructure:"output_paths"`
	// Development enables colored levels and error stack traces
	Development bool `yaml:"development" json:"development" mapstructure:"development"`
}

// ObservabilityConfig contains monitoring settings.
type ObservabilityConfig struct {
	// MetricsFile, when set, receives Prometheus metrics in textfile format after each command
	MetricsFile string `yaml:"metrics_file" json:"metrics_file" mapstructure:"metrics_file"`
	// EnableTracing exports OpenTelemetry spans to stderr
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing" mapstructure:"enable_tracing"`
	// ServiceName labels exported spans
	ServiceName string `yaml:"service_name" json:"service_name" mapstructure:"service_name"`
}

// Chart image formats supported by the visualizer.
var supportedFormats = map[string]bool{
	"png":  true,
	"svg":  true,
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
}

// NewConfig creates a Config with the defaults:
// data.json in, data.csv out, the "cars" array, "image" excluded, and the
// manufacturer / country / color charts.
func NewConfig() *Config {
	return &Config{
		Converter: ConverterConfig{
			Input:     "data.json",
			Output:    "data.csv",
			ArrayKey:  "cars",
			Exclude:   []string{"image"},
			Separator: ".",
			Delimiter: ",",
		},
		Visualizer: VisualizerConfig{
			Input:     "data.csv",
			Delimiter: ",",
			OutputDir: ".",
			Format:    "png",
			Width:     12,
			Height:    6,
			Charts:    DefaultCharts(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Observability: ObservabilityConfig{
			ServiceName: "carflow",
		},
	}
}

// DefaultCharts returns the three standard car charts.
func DefaultCharts() []ChartConfig {
	return []ChartConfig{
		{
			Column:  "manufacturer",
			Title:   "Car Manufacturers Distribution (Sorted by Count)",
			Replace: []Replacement{{From: "Ford Shelby", To: "Ford"}},
		},
		{
			Column: "countryOfOrigin",
			Title:  "Car Countries of Origin Distribution (Sorted by Count)",
		},
		{
			Column:     "color",
			Title:      "Car Colors Distribution (Sorted by Count)",
			FirstToken: true,
			ColorBars:  true,
		},
	}
}

// Validate validates the configuration for correctness.
func (c *Config) Validate() error {
	if err := c.Converter.Validate(); err != nil {
		return err
	}
	if err := c.Visualizer.Validate(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Validate checks the converter section
func (c *ConverterConfig) Validate() error {
	if c.Input == "" {
		return errors.New(errors.ErrorTypeConfig, "converter.input is required")
	}
	if c.Output == "" {
		return errors.New(errors.ErrorTypeConfig, "converter.output is required")
	}
	if c.ArrayKey == "" {
		return errors.New(errors.ErrorTypeConfig, "converter.array_key is required")
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "converter.delimiter")
	}
	return nil
}

// Validate checks the visualizer section
func (v *VisualizerConfig) Validate() error {
	if v.Input == "" {
		return errors.New(errors.ErrorTypeConfig, "visualizer.input is required")
	}
	if _, err := ParseDelimiter(v.Delimiter); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "visualizer.delimiter")
	}
	if !supportedFormats[strings.ToLower(v.Format)] {
		return errors.Newf(errors.ErrorTypeConfig, "visualizer.format %q is not supported", v.Format)
	}
	if v.Width <= 0 || v.Height <= 0 {
		return errors.New(errors.ErrorTypeConfig, "visualizer.width and visualizer.height must be positive")
	}
	if len(v.Charts) == 0 {
		return errors.New(errors.ErrorTypeConfig, "visualizer.charts must not be empty")
	}
	for i, ch := range v.Charts {
		if ch.Column == "" {
			return errors.Newf(errors.ErrorTypeConfig, "visualizer.charts[%d].column is required", i)
		}
	}
	return nil
}

// Columns returns the columns the configured charts need.
func (v *VisualizerConfig) Columns() []string {
	cols := make([]string, len(v.Charts))
	for i, ch := range v.Charts {
		cols[i] = ch.Column
	}
	return cols
}

// ParseDelimiter returns the single rune of d. Tab may be written as "\t".
func ParseDelimiter(d string) (rune, error) {
	if d == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(d) != 1 {
		return 0, errors.Newf(errors.ErrorTypeConfig, "delimiter must be a single character, got %q", d)
	}
	r, _ := utf8.DecodeRuneInString(d)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, errors.Newf(errors.ErrorTypeConfig, "invalid delimiter %q", d)
	}
	return r, nil
}
