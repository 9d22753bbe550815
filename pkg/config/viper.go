package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CARFLOW_CONVERTER_INPUT.
const EnvPrefix = "CARFLOW"

// NewViper returns a viper instance seeded with the defaults of NewConfig
// and wired for CARFLOW_* environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v, NewConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every scalar key of cfg with v. Viper only resolves
// environment variables for keys it knows about.
func SetDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("converter.input", cfg.Converter.Input)
	v.SetDefault("converter.output", cfg.Converter.Output)
	v.SetDefault("converter.array_key", cfg.Converter.ArrayKey)
	v.SetDefault("converter.exclude", cfg.Converter.Exclude)
	v.SetDefault("converter.separator", cfg.Converter.Separator)
	v.SetDefault("converter.delimiter", cfg.Converter.Delimiter)
	v.SetDefault("converter.compression", cfg.Converter.Compression)

	v.SetDefault("visualizer.input", cfg.Visualizer.Input)
	v.SetDefault("visualizer.delimiter", cfg.Visualizer.Delimiter)
	v.SetDefault("visualizer.compression", cfg.Visualizer.Compression)
	v.SetDefault("visualizer.output_dir", cfg.Visualizer.OutputDir)
	v.SetDefault("visualizer.format", cfg.Visualizer.Format)
	v.SetDefault("visualizer.width", cfg.Visualizer.Width)
	v.SetDefault("visualizer.height", cfg.Visualizer.Height)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output_paths", cfg.Logging.OutputPaths)
	v.SetDefault("logging.development", cfg.Logging.Development)

	v.SetDefault("observability.metrics_file", cfg.Observability.MetricsFile)
	v.SetDefault("observability.enable_tracing", cfg.Observability.EnableTracing)
	v.SetDefault("observability.service_name", cfg.Observability.ServiceName)

	v.SetDefault("strict", cfg.Strict)
}

// FromViper reads the optional config file named by configFile into v and
// decodes the merged settings (flags > env > file > defaults) into a
// validated Config.
func FromViper(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	// Charts are not registered as defaults; a config file replaces them
	// wholesale. mapstructure merges into an existing slice element by
	// element, so the defaults are cleared first.
	cfg := NewConfig()
	if v.IsSet("visualizer.charts") {
		cfg.Visualizer.Charts = nil
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
