package telemetry

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Config controls OTLP export. When Enabled is false the provider hands out
// noop tracers and meters so call sites never have to branch.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"` // grpc | http
	Service  string `yaml:"service"`
	Version  string `yaml:"version"`
}

// Provider wires tracer/meter providers and the pipeline instruments.
type Provider struct {
	Enabled bool
	tracer  trace.Tracer
	meter   metric.Meter

	promptsAnalyzed  metric.Int64Counter
	decisions        metric.Int64Counter
	detections       metric.Int64Counter
	pipelineDuration metric.Float64Histogram

	shutdownTraceProvider func(context.Context) error
	shutdownMeterProvider func(context.Context) error
}

// NewProvider configures OTLP exporters and providers. When disabled, it
// returns noop providers.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !cfg.Enabled {
		no := &Provider{
			Enabled: false,
			tracer:  trace.NewNoopTracerProvider().Tracer(""),
			meter:   noop.NewMeterProvider().Meter(""),
		}
		if err := no.initInstruments(); err != nil {
			return nil, err
		}
		return no, nil
	}

	service := cfg.Service
	if service == "" {
		service = "sentinelguard"
	}
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", service),
			attribute.String("service.version", cfg.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	var traceExp sdktrace.SpanExporter
	var metricExp sdkmetric.Exporter
	switch strings.ToLower(cfg.Protocol) {
	case "", "grpc":
		traceExp, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint), otlptracegrpc.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("create grpc trace exporter: %w", err)
		}
		metricExp, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.Endpoint), otlpmetricgrpc.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("create grpc metric exporter: %w", err)
		}
	case "http":
		traceExp, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("create http trace exporter: %w", err)
		}
		metricExp, err = otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(cfg.Endpoint), otlpmetrichttp.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("create http metric exporter: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown telemetry protocol %q", cfg.Protocol)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	p := &Provider{
		Enabled:               true,
		tracer:                tp.Tracer("sentinelguard"),
		meter:                 mp.Meter("sentinelguard"),
		shutdownTraceProvider: tp.Shutdown,
		shutdownMeterProvider: mp.Shutdown,
	}
	if err := p.initInstruments(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) initInstruments() error {
	var err error
	p.promptsAnalyzed, err = p.meter.Int64Counter("sentinelguard_prompts_total",
		metric.WithDescription("Prompts run through the analysis pipeline"))
	if err != nil {
		return fmt.Errorf("create prompts counter: %w", err)
	}
	p.decisions, err = p.meter.Int64Counter("sentinelguard_decisions_total",
		metric.WithDescription("Decisions grouped by action"))
	if err != nil {
		return fmt.Errorf("create decisions counter: %w", err)
	}
	p.detections, err = p.meter.Int64Counter("sentinelguard_detections_total",
		metric.WithDescription("Individual detector findings"))
	if err != nil {
		return fmt.Errorf("create detections counter: %w", err)
	}
	p.pipelineDuration, err = p.meter.Float64Histogram("sentinelguard_pipeline_duration_ms",
		metric.WithDescription("End-to-end analysis latency in milliseconds"))
	if err != nil {
		return fmt.Errorf("create duration histogram: %w", err)
	}
	return nil
}

// Tracer returns the provider's tracer, or a noop tracer on a nil provider.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return trace.NewNoopTracerProvider().Tracer("")
	}
	return p.tracer
}

// RecordAnalysis records one pipeline run. Safe to call on a nil provider.
func (p *Provider) RecordAnalysis(ctx context.Context, action string, detections int, durMs float64) {
	if p == nil || p.promptsAnalyzed == nil {
		return
	}
	p.promptsAnalyzed.Add(ctx, 1)
	p.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
	if detections > 0 {
		p.detections.Add(ctx, int64(detections))
	}
	p.pipelineDuration.Record(ctx, durMs, metric.WithAttributes(attribute.String("action", action)))
}

func (p *Provider) Shutdown(ctx context.Context) {
	if p == nil {
		return
	}
	if p.shutdownTraceProvider != nil {
		if err := p.shutdownTraceProvider(ctx); err != nil {
			log.Printf("telemetry: tracer shutdown: %v", err)
		}
	}
	if p.shutdownMeterProvider != nil {
		if err := p.shutdownMeterProvider(ctx); err != nil {
			log.Printf("telemetry: meter shutdown: %v", err)
		}
	}
}
