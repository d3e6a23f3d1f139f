package instrument

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/zvue/pkg/reactive"
)

// Default tracer name for zvue.
const defaultTracerName = "zvue"

// TracingConfig configures the OpenTelemetry hooks.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "zvue").
	TracerName string

	// TracerProvider provides the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	TracerProvider trace.TracerProvider

	// Filter determines which keys to trace.
	// If nil, every notification pass is traced.
	Filter func(key string) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(info reactive.NotifyInfo) []attribute.KeyValue
}

// TracingOption configures the OpenTelemetry hooks.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.TracerProvider = tp
	}
}

// WithKeyFilter sets a filter function for traced keys.
func WithKeyFilter(filter func(key string) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(info reactive.NotifyInfo) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing records every notification pass as a span named "zvue.notify".
// It implements reactive.Hooks.
//
// Hooks run after the pass has finished, so spans are recorded with explicit
// start and end timestamps taken from NotifyInfo. Configure the provider in
// main() before observing data:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
type Tracing struct {
	config TracingConfig
	tracer trace.Tracer
}

var _ reactive.Hooks = (*Tracing)(nil)

// NewTracing creates tracing hooks.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracing{
		config: config,
		tracer: tp.Tracer(config.TracerName),
	}
}

// OnWatch implements reactive.Hooks. Watches are not traced.
func (t *Tracing) OnWatch(string) {}

// OnWrite implements reactive.Hooks. Writes are not traced.
func (t *Tracing) OnWrite(string, bool) {}

// OnNotify implements reactive.Hooks.
func (t *Tracing) OnNotify(info reactive.NotifyInfo) {
	if t.config.Filter != nil && !t.config.Filter(info.Key) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("zvue.key", info.Key),
		attribute.Int("zvue.readers", info.Readers),
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(info)...)
	}

	_, span := t.tracer.Start(
		context.Background(),
		"zvue.notify",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(info.Start),
	)

	if info.Err != nil {
		span.RecordError(info.Err)
		span.SetStatus(codes.Error, info.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(info.Start.Add(info.Duration)))
}
