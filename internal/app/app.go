package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fuelcli/internal/config"
	apperrors "fuelcli/internal/errors"
	"fuelcli/internal/infrastructure"
	"fuelcli/internal/operations"
)

// ShutdownTimeout bounds flushing telemetry at exit.
const ShutdownTimeout = 10 * time.Second

// Exit codes returned by Main.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// Options select what an executable runs.
type Options struct {
	// Command names the executable in logs.
	Command string
	// ConfigFile overrides FUEL_CONFIG_FILE when set.
	ConfigFile string
	// Steps limits the run to the named steps; empty runs all of them.
	Steps []string
}

// Application represents the main application container
type Application struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Telemetry *infrastructure.Telemetry
	Manager   *operations.Manager

	options Options
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(opts Options) (*Application, error) {
	cfg, err := config.LoadFrom(opts.ConfigFile)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}
	return NewApplicationWithConfig(cfg, opts)
}

// NewApplicationWithConfig wires an application around an already loaded
// configuration.
func NewApplicationWithConfig(cfg *config.Config, opts Options) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize logger", err)
	}
	logger = logger.With(slog.String("command", opts.Command))

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, apperrors.NewStorageError("failed to ensure directories", err)
	}
	paths.LogPathResolution(logger)

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize telemetry", err)
	}

	registry := operations.NewRegistry()
	if err := operations.RegisterPipeline(registry, &operations.StageOptions{
		Paths:    paths,
		Pipeline: cfg.Pipeline,
		Metrics:  telemetry.Metrics,
		Logger:   logger,
	}); err != nil {
		return nil, fmt.Errorf("failed to register pipeline steps: %w", err)
	}

	return &Application{
		Config:    cfg,
		Paths:     paths,
		Logger:    logger,
		Telemetry: telemetry,
		Manager:   operations.NewManager(registry, nil, operations.NewOperationTracer(telemetry), logger),
		options:   opts,
	}, nil
}

// Execute runs the configured steps once
func (a *Application) Execute(ctx context.Context) (*operations.OperationResponse, error) {
	ctx = infrastructure.EnsureTraceID(ctx)

	a.Logger.InfoContext(ctx, "Pipeline run starting",
		slog.Any("steps", a.options.Steps),
		slog.Any("window", a.Config.Pipeline.Months()))

	resp, err := a.Manager.Execute(ctx, operations.OperationRequest{
		ID:    infrastructure.GetTraceID(ctx),
		Steps: a.options.Steps,
	})
	if err != nil {
		a.Logger.ErrorContext(ctx, "Pipeline run failed",
			slog.String("step", operations.FailedStep(err)),
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.String("error", err.Error()))
		return resp, err
	}

	a.Logger.InfoContext(ctx, "Pipeline run complete",
		slog.Duration("duration", resp.Duration))
	return resp, nil
}

// Stop flushes telemetry and closes the log file
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
	defer cancel()

	var errs []error
	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run executes the pipeline until it finishes or an interrupt arrives, then
// shuts down.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err := a.Execute(ctx)

	if stopErr := a.Stop(context.Background()); stopErr != nil {
		a.Logger.Error("Shutdown error", slog.String("error", stopErr.Error()))
		if err == nil {
			err = stopErr
		}
	}
	return err
}

// Main builds and runs an application, returning the process exit code.
func Main(opts Options) int {
	application, err := NewApplication(opts)
	if err != nil {
		slog.Error("Failed to initialize application",
			slog.String("command", opts.Command),
			slog.String("error", err.Error()))
		return ExitConfig
	}

	if err := application.Run(); err != nil {
		return ExitFailure
	}
	return ExitOK
}
