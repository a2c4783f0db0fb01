package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/pilgrim-ai/pilgrim/config"
	"github.com/pilgrim-ai/pilgrim/graph"
	"github.com/pilgrim-ai/pilgrim/log"
)

// logExporter writes every finished span as one log line.
type logExporter struct {
	logger log.Logger
}

func (e *logExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		e.logger.Info("span %s trace=%s duration=%s status=%s",
			s.Name(),
			s.SpanContext().TraceID(),
			s.EndTime().Sub(s.StartTime()).Round(time.Microsecond),
			s.Status().Code)
	}
	return nil
}

func (e *logExporter) Shutdown(context.Context) error { return nil }

// newTracing installs a tracer provider that logs finished spans and returns
// a listener feeding it. The returned function flushes and stops the provider.
func newTracing(cfg config.TracingConfig, logger log.Logger) (graph.NodeListener, func(context.Context) error) {
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(&logExporter{logger: logger}),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))),
	)
	otel.SetTracerProvider(provider)
	return graph.NewOTelListener(provider.Tracer(cfg.ServiceName)), provider.Shutdown
}
