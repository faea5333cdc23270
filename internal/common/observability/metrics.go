package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects where metrics are registered and whether spans are exported.
type Config struct {
	// Registerer defaults to the prometheus default registerer.
	Registerer     promclient.Registerer
	TracingEnabled bool
	JaegerEndpoint string
	SampleRatio    float64
}

type Observability struct {
	meterProvider     *metric.MeterProvider
	tracerProvider    *sdktrace.TracerProvider
	meter             otelmetric.Meter
	tracer            trace.Tracer
	operationCounter  otelmetric.Int64Counter
	operationDuration otelmetric.Float64Histogram
	eventCounter      otelmetric.Int64Counter
}

func New(serviceName string, cfg Config) *Observability {
	o := &Observability{tracer: noop.NewTracerProvider().Tracer(serviceName)}

	if cfg.TracingEnabled {
		tp, err := newTracerProvider(serviceName, cfg.JaegerEndpoint, cfg.SampleRatio)
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			otel.SetTracerProvider(tp)
			o.tracerProvider = tp
			o.tracer = tp.Tracer(serviceName)
		}
	}

	var exporterOpts []prometheus.Option
	if cfg.Registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(cfg.Registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	operationCounter, _ := meter.Int64Counter(
		"registry.operations",
		otelmetric.WithDescription("Number of registry operations by outcome"),
	)

	operationDuration, _ := meter.Float64Histogram(
		"registry.operation.duration",
		otelmetric.WithDescription("Registry operation duration"),
		otelmetric.WithUnit("ms"),
	)

	eventCounter, _ := meter.Int64Counter(
		"registry.events",
		otelmetric.WithDescription("Registration events handed to sinks by outcome"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.operationCounter = operationCounter
	o.operationDuration = operationDuration
	o.eventCounter = eventCounter
	return o
}

// StartSpan starts a span on the service tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordOperation(ctx context.Context, operation, status string) {
	if o.operationCounter != nil {
		o.operationCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordOperationDuration(ctx context.Context, operation string, duration time.Duration) {
	if o.operationDuration != nil {
		o.operationDuration.Record(ctx, float64(duration.Microseconds())/1000, otelmetric.WithAttributes(
			attribute.String("operation", operation),
		))
	}
}

func (o *Observability) RecordEvent(ctx context.Context, sink, status string) {
	if o.eventCounter != nil {
		o.eventCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("sink", sink),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
