// Package tracing records hub dispatch passes as OpenTelemetry spans.
package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/dshills/eventhub"
)

// SpanName is the name of the span covering one dispatch pass.
const SpanName = "eventhub.emit"

// InstrumentationName identifies the tracer.
const InstrumentationName = "github.com/dshills/eventhub"

// Span attribute keys.
const (
	AttrEventType    = attribute.Key("eventhub.event.type")
	AttrCandidates   = attribute.Key("eventhub.candidates")
	AttrInvoked      = attribute.Key("eventhub.invoked")
	AttrSubscription = attribute.Key("eventhub.subscription.id")
	AttrOnce         = attribute.Key("eventhub.subscription.once")
	AttrDuration     = attribute.Key("eventhub.handler.duration_ms")
)

// Observer is an eventhub.Observer that wraps each pass in a span and adds
// one span event per handler. Handlers receive the span's context, so nested
// emits become child spans.
type Observer struct {
	tracer trace.Tracer
}

var _ eventhub.Observer = (*Observer)(nil)

// New creates an observer using tp, or the global provider when tp is nil.
func New(tp trace.TracerProvider) *Observer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Observer{tracer: tp.Tracer(InstrumentationName)}
}

// EmitStarted implements eventhub.Observer.
func (o *Observer) EmitStarted(ctx context.Context, eventType string, candidates int) context.Context {
	ctx, _ = o.tracer.Start(ctx, SpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrEventType.String(eventType),
			AttrCandidates.Int(candidates),
		),
	)
	return ctx
}

// HandlerFinished implements eventhub.Observer.
func (o *Observer) HandlerFinished(ctx context.Context, inv eventhub.Invocation) {
	attrs := []attribute.KeyValue{
		AttrSubscription.String(inv.SubscriptionID),
		AttrOnce.Bool(inv.Once),
		AttrDuration.Float64(float64(inv.Duration.Microseconds()) / 1000),
	}
	if inv.Err != nil {
		attrs = append(attrs, attribute.String("error", inv.Err.Error()))
	}
	trace.SpanFromContext(ctx).AddEvent("handler", trace.WithAttributes(attrs...))
}

// EmitFinished implements eventhub.Observer.
func (o *Observer) EmitFinished(ctx context.Context, _ string, invoked int, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(AttrInvoked.Int(invoked))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Setup installs a global tracer provider exporting to an OTLP/HTTP collector.
//
// Tracing is opt-in: with an empty endpoint Setup registers nothing and
// returns a no-op shutdown function. The endpoint is either a URL or a
// host:port reached over plain HTTP.
//
// The returned shutdown function flushes pending spans and should be deferred
// by the caller.
func Setup(ctx context.Context, endpoint, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return noop, nil
	}

	var opt otlptracehttp.Option
	if strings.Contains(endpoint, "://") {
		opt = otlptracehttp.WithEndpointURL(endpoint)
	} else {
		opt = otlptracehttp.WithEndpoint(endpoint)
	}
	opts := []otlptracehttp.Option{opt}
	if !strings.HasPrefix(endpoint, "https://") {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
