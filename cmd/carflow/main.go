package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/carflow/internal/pipeline"
	"github.com/ajitpratap0/carflow/pkg/config"
	"github.com/ajitpratap0/carflow/pkg/logger"
	"github.com/ajitpratap0/carflow/pkg/metrics"
	"github.com/ajitpratap0/carflow/pkg/observability"
)

var version = "0.1.0"

// skipSetup marks commands that run without loading configuration
const skipSetup = "carflow/skip-setup"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app holds the state shared by the commands of one invocation
type app struct {
	v          *viper.Viper
	configFile string
	stdout     io.Writer
	stderr     io.Writer

	cfg     *config.Config
	metrics *metrics.Collector
	tracing *observability.Tracing
	// failed is set when a pipeline reported an error to the user
	failed bool
}

// execute runs the CLI and returns the process exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{
		v:      config.NewViper(),
		stdout: stdout,
		stderr: stderr,
	}

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	if a.failed && a.cfg != nil && a.cfg.Strict {
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "carflow",
		Short: "carflow - car inventory JSON to CSV conversion and category charts",
		Long: `carflow flattens the "cars" array of a JSON document into a CSV file and
renders sorted category-count bar charts (manufacturer, country of origin,
color) from that CSV file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a YAML configuration file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "json", "Log encoding (json, console)")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile after the command")
	flags.Bool("trace", false, "Export OpenTelemetry spans to stderr")
	flags.Bool("strict", false, "Exit with status 1 when a pipeline fails")
	a.bind(root, map[string]string{
		"logging.level":                "log-level",
		"logging.format":               "log-format",
		"observability.metrics_file":   "metrics-file",
		"observability.enable_tracing": "trace",
		"strict":                       "strict",
	}, true)

	root.AddCommand(
		a.convertCommand(),
		a.visualizeCommand(),
		a.runCommand(),
		a.listCommand(),
		a.configCommand(),
		a.versionCommand(),
	)
	return root
}

// bind maps viper keys to flags of cmd so that a flag set on the command
// line overrides environment, file and defaults.
func (a *app) bind(cmd *cobra.Command, keys map[string]string, persistent bool) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	for key, name := range keys {
		if err := a.v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// setup loads configuration and starts logging, metrics and tracing
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	cfg, err := config.FromViper(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Encoding:    cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
	}); err != nil {
		return err
	}

	a.metrics = metrics.NewCollector()
	a.tracing, err = observability.InitTracing(observability.TracingConfig{
		Enabled:        cfg.Observability.EnableTracing,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: version,
		Writer:         a.stderr,
	})
	if err != nil {
		return err
	}

	logger.Get().Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.String("config_file", a.configFile))
	return nil
}

// teardown flushes metrics and spans
func (a *app) teardown(ctx context.Context) error {
	if a.cfg == nil {
		return nil
	}
	defer func() { _ = logger.Sync() }()

	if a.tracing != nil {
		if err := a.tracing.Shutdown(ctx); err != nil {
			logger.Get().Warn("tracing shutdown failed", zap.Error(err))
		}
	}
	if path := a.cfg.Observability.MetricsFile; path != "" && a.metrics != nil {
		if err := a.metrics.WriteTextfile(path); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) deps() pipeline.Deps {
	d := pipeline.Deps{
		Logger:  logger.Get(),
		Metrics: a.metrics,
	}
	if a.tracing != nil {
		d.Tracer = a.tracing.Tracer()
	}
	return d
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{skipSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "carflow v%s\n", version)
			fmt.Fprintf(a.stdout, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(a.stdout, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
