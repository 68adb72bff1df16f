// Package main implements the streampump command: it builds pipelines from
// configuration, splices the declarative processors discovered on disk into
// them and pumps JSON-line events through the result.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/streampump/componentregistry"
	"github.com/c360/streampump/config"
	"github.com/c360/streampump/declarative/segment"
	"github.com/c360/streampump/errors"
	"github.com/c360/streampump/metric"
	"github.com/c360/streampump/pipeline"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "streampump"
)

const (
	sinkID          = "sink"
	stdinName       = "-"
	shutdownTimeout = 5 * time.Second
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv)
	cancel()
	if err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout, stderr io.Writer,
	getenv func(string) string,
) error {
	cliCfg, err := parseFlags(args, getenv, stderr)
	if stderrors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if cliCfg.ShowHelp {
		return nil
	}
	if cliCfg.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}

	logger := setupLogger(stderr, cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("Starting streampump", "version", Version, "build_time", BuildTime, "config_path", cliCfg.ConfigPath)

	cfg, err := loadConfig(cliCfg, getenv)
	if err != nil {
		return err
	}

	metricsRegistry := metric.NewMetricsRegistry()
	service, closers, err := createPipelines(cfg, stdout, metricsRegistry, logger)
	defer closeAll(closers, logger)
	if err != nil {
		return err
	}

	if err := constructSegments(cfg, service, metricsRegistry, logger); err != nil {
		return err
	}

	if cliCfg.Validate {
		logger.Info("Configuration and definitions are valid")
		return nil
	}

	target, err := targetPipeline(cfg, cliCfg, service)
	if err != nil {
		return err
	}

	sources, inputClosers, err := openInputs(cliCfg.Inputs, stdin)
	defer closeAll(inputClosers, logger)
	if err != nil {
		return err
	}

	return pumpEvents(ctx, cfg, target, sources, metricsRegistry, logger)
}

// loadConfig layers the config file, if any, over the defaults and applies
// command-line overrides.
func loadConfig(cliCfg *CLIConfig, getenv func(string) string) (*config.Config, error) {
	loader := config.NewLoader()
	if cliCfg.ConfigPath != "" {
		loader.AddLayer(cliCfg.ConfigPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cliCfg.SegmentPath != "" {
		cfg.SegmentBuilder.Path = cliCfg.SegmentPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// createPipelines creates one pipeline per config entry, each holding only its
// sink, and registers them with a new service.
func createPipelines(
	cfg *config.Config,
	stdout io.Writer,
	metricsRegistry *metric.MetricsRegistry,
	logger *slog.Logger,
) (*pipeline.Service, []io.Closer, error) {
	service := pipeline.NewService()
	var closers []io.Closer

	for _, pc := range cfg.Pipelines {
		var sink pipeline.Processor
		switch pc.Sink {
		case config.SinkStdout:
			sink = pipeline.NewWriterSink(sinkID, stdout)
		case config.SinkNull:
			sink = pipeline.NewNullSink(sinkID)
		case config.SinkFile:
			f, err := os.Create(pc.Output)
			if err != nil {
				return nil, closers, errors.WrapTransient(err, "main", "createPipelines",
					fmt.Sprintf("open sink of pipeline '%s'", pc.ID))
			}
			closers = append(closers, f)
			sink = pipeline.NewWriterSink(sinkID, f)
		}

		if err := service.AddPipeline(pipeline.New(pc.ID, metricsRegistry, logger, sink)); err != nil {
			return nil, closers, err
		}
		logger.Debug("Pipeline created", "pipeline", pc.ID, "sink", pc.Sink)
	}
	return service, closers, nil
}

// constructSegments registers the built-in classes, discovers the definition
// files and splices the constructed processors into their pipelines.
func constructSegments(
	cfg *config.Config,
	service *pipeline.Service,
	metricsRegistry *metric.MetricsRegistry,
	logger *slog.Logger,
) error {
	classes := segment.NewClassRegistry()
	if err := componentregistry.Register(classes); err != nil {
		return fmt.Errorf("register classes: %w", err)
	}
	logger.Info("Classes registered", "classes", classes.Classes())

	builder, err := segment.NewBuilder(cfg.SegmentBuilder.Path, classes, nil, logger)
	if err != nil {
		return fmt.Errorf("discover definitions: %w", err)
	}

	app := segment.App{
		Service:         service,
		MetricsRegistry: metricsRegistry,
		Logger:          logger,
	}
	if err := builder.ConstructSegment(app); err != nil {
		return fmt.Errorf("construct segments: %w", err)
	}
	return nil
}

func targetPipeline(cfg *config.Config, cliCfg *CLIConfig, service *pipeline.Service) (*pipeline.Pipeline, error) {
	id := cliCfg.Pipeline
	if id == "" {
		id = cfg.Pipelines[0].ID
	}
	return service.Locate(id)
}

// openInputs opens every named input; none, or "-", reads stdin.
func openInputs(names []string, stdin io.Reader) ([]source, []io.Closer, error) {
	if len(names) == 0 {
		return []source{{name: stdinName, r: stdin}}, nil, nil
	}

	sources := make([]source, 0, len(names))
	var closers []io.Closer
	for _, name := range names {
		if name == stdinName {
			sources = append(sources, source{name: stdinName, r: stdin})
			continue
		}
		f, err := os.Open(name)
		if err != nil {
			return nil, closers, errors.WrapInvalid(err, "main", "openInputs", fmt.Sprintf("open input %s", name))
		}
		closers = append(closers, f)
		sources = append(sources, source{name: name, r: f})
	}
	return sources, closers, nil
}

// pumpEvents runs the pump and, when enabled, the metrics server. The metrics
// server keeps serving after the inputs are drained until ctx is cancelled.
func pumpEvents(
	ctx context.Context,
	cfg *config.Config,
	target *pipeline.Pipeline,
	sources []source,
	metricsRegistry *metric.MetricsRegistry,
	logger *slog.Logger,
) error {
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsRegistry)
		g.Go(server.Start)
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Stop(stopCtx)
		})
		logger.Info("Metrics server started", "address", server.Address())
	}

	g.Go(func() error {
		stats, err := newPump(target, logger).run(gctx, sources)
		if err != nil {
			return err
		}
		if err := target.Analyze(); err != nil {
			return err
		}

		logger.Info("Pump finished",
			"pipeline", target.ID(),
			"read", stats.Read,
			"passed", stats.Passed,
			"dropped", stats.Dropped,
			"failed", stats.Failed)
		logProfile(target, logger)
		return nil
	})

	return g.Wait()
}

func closeAll(closers []io.Closer, logger *slog.Logger) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn("Close failed", "error", err)
		}
	}
}
