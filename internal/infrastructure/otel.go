package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"fuelcli/internal/config"
)

const (
	// MeterName is the instrumentation scope for every tracer and meter.
	MeterName = "fuelcli"
)

// Telemetry holds the OpenTelemetry providers for one run.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Metrics        *PipelineMetrics
	Logger         *slog.Logger

	metricsFile string
	traceOut    io.Closer
}

// InitializeTelemetry sets up tracing and metrics as configured. Exporters set
// to "none" are replaced by no-op providers so callers never nil-check.
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing telemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Telemetry{
		Logger:      logger,
		metricsFile: cfg.MetricsFile,
	}

	if err := t.initializeTracing(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := t.initializeMetrics(cfg, res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	metrics, err := NewPipelineMetrics(t.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	t.Metrics = metrics

	return t, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg config.TelemetryConfig) (*resource.Resource, error) {
	hostname, _ := os.Hostname()
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("host.name", hostname),
	), nil
}

func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	switch cfg.TraceExporter {
	case "stdout":
		var out io.Writer = os.Stderr
		if cfg.TraceFile != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
				return fmt.Errorf("failed to create trace directory: %w", err)
			}
			f, err := os.OpenFile(cfg.TraceFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("failed to open trace file: %w", err)
			}
			t.traceOut = f
			out = f
		}

		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return fmt.Errorf("failed to create trace exporter: %w", err)
		}

		// Synchronous export: the process exits right after the run.
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
		)
		t.TracerProvider = tp
		t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
		otel.SetTracerProvider(tp)
	case "none", "":
		t.Tracer = tracenoop.NewTracerProvider().Tracer(MeterName)
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	return nil
}

func (t *Telemetry) initializeMetrics(cfg config.TelemetryConfig, res *resource.Resource) error {
	switch cfg.MetricExporter {
	case "prometheus":
		// A private registry keeps Go runtime collectors out of the textfile.
		t.Registry = prometheus.NewRegistry()

		exporter, err := otelprom.New(
			otelprom.WithRegisterer(t.Registry),
			otelprom.WithoutTargetInfo(),
			otelprom.WithoutScopeInfo(),
		)
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}

		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)
		t.MeterProvider = mp
		t.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
		otel.SetMeterProvider(mp)
	case "none", "":
		t.Meter = metricnoop.NewMeterProvider().Meter(MeterName)
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}
	return nil
}

// WriteMetrics writes the registry in Prometheus text format to the
// configured metrics file. It is a no-op when either is unset.
func (t *Telemetry) WriteMetrics() error {
	if t.Registry == nil || t.metricsFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.metricsFile), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(t.metricsFile, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file %s: %w", t.metricsFile, err)
	}
	return nil
}

// Shutdown flushes the metrics file and shuts down the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if err := t.WriteMetrics(); err != nil {
		errs = append(errs, err)
	}

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if t.traceOut != nil {
		if err := t.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("telemetry shutdown errors: %v", errs)
	}

	t.Logger.InfoContext(ctx, "Telemetry shutdown complete")
	return nil
}

// PipelineMetrics holds the run's counters and histograms. A nil
// *PipelineMetrics records nothing.
type PipelineMetrics struct {
	RowsRead     metric.Int64Counter
	RowsWritten  metric.Int64Counter
	JoinMisses   metric.Int64Counter
	UnrankedRows metric.Int64Counter
	StepDuration metric.Float64Histogram
}

// NewPipelineMetrics creates the pipeline instruments on meter. The
// Prometheus exporter appends _total to counters and _seconds to the
// histogram.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsRead, err := meter.Int64Counter(
		"fuel_rows_read",
		metric.WithDescription("Rows read from pipeline inputs"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"fuel_rows_written",
		metric.WithDescription("Rows written to pipeline artifacts"),
	)
	if err != nil {
		return nil, err
	}

	joinMisses, err := meter.Int64Counter(
		"fuel_join_misses",
		metric.WithDescription("Left-join lookups that found no match"),
	)
	if err != nil {
		return nil, err
	}

	unranked, err := meter.Int64Counter(
		"fuel_unranked_rows",
		metric.WithDescription("Rows left unranked because adjusted price is missing"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"fuel_step_duration",
		metric.WithDescription("Pipeline step execution duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsRead:     rowsRead,
		RowsWritten:  rowsWritten,
		JoinMisses:   joinMisses,
		UnrankedRows: unranked,
		StepDuration: stepDuration,
	}, nil
}

// RecordRowsRead adds n rows read by stage.
func (m *PipelineMetrics) RecordRowsRead(ctx context.Context, stage string, n int) {
	if m == nil {
		return
	}
	m.RowsRead.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordRowsWritten adds n rows written to artifact.
func (m *PipelineMetrics) RecordRowsWritten(ctx context.Context, artifact string, n int) {
	if m == nil {
		return
	}
	m.RowsWritten.Add(ctx, int64(n), metric.WithAttributes(attribute.String("artifact", artifact)))
}

// RecordJoinMisses adds n misses for a join kind ("postcode", "adjustment", "region").
func (m *PipelineMetrics) RecordJoinMisses(ctx context.Context, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.JoinMisses.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordUnrankedRows adds n unranked rows for a rank window ("week", "month").
func (m *PipelineMetrics) RecordUnrankedRows(ctx context.Context, window string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.UnrankedRows.Add(ctx, int64(n), metric.WithAttributes(attribute.String("window", window)))
}

// RecordStepDuration records one step execution.
func (m *PipelineMetrics) RecordStepDuration(ctx context.Context, step string, d time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.StepDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}

	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
