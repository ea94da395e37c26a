package sni

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/eringen/sni/mempool"
)

const tracerName = "github.com/eringen/sni"

// SetupTracing installs a global OTLP/HTTP tracer provider exporting to
// endpoint. An empty endpoint leaves tracing off and returns a no-op
// shutdown. The returned shutdown flushes pending spans.
func SetupTracing(ctx context.Context, serviceName, endpoint string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
	)
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

// tracedSource records a span around every call to the wrapped source.
type tracedSource struct {
	next   mempool.Source
	tracer trace.Tracer
}

// traceSource wraps src with spans from tp, or from the global provider when
// tp is nil.
func traceSource(src mempool.Source, tp trace.TracerProvider) mempool.Source {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &tracedSource{next: src, tracer: tp.Tracer(tracerName)}
}

func (s *tracedSource) GetPost(ctx context.Context, slug, locale string) (mempool.Post, error) {
	ctx, span := s.tracer.Start(ctx, "mempool.GetPost", trace.WithAttributes(
		attribute.String("locale", locale),
		attribute.String("slug", slug),
	))
	defer span.End()
	post, err := s.next.GetPost(ctx, slug, locale)
	endSpan(span, err)
	return post, err
}

func (s *tracedSource) GetParams(ctx context.Context) ([]mempool.Params, error) {
	ctx, span := s.tracer.Start(ctx, "mempool.GetParams")
	defer span.End()
	params, err := s.next.GetParams(ctx)
	span.SetAttributes(attribute.Int("count", len(params)))
	endSpan(span, err)
	return params, err
}

func (s *tracedSource) ListPosts(ctx context.Context, locale string) ([]mempool.Post, error) {
	ctx, span := s.tracer.Start(ctx, "mempool.ListPosts", trace.WithAttributes(
		attribute.String("locale", locale),
	))
	defer span.End()
	posts, err := s.next.ListPosts(ctx, locale)
	span.SetAttributes(attribute.Int("count", len(posts)))
	endSpan(span, err)
	return posts, err
}

// Not-found is an expected outcome and does not mark the span failed.
func endSpan(span trace.Span, err error) {
	switch {
	case err == nil:
	case errors.Is(err, mempool.ErrNotFound):
		span.SetAttributes(attribute.Bool("not_found", true))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
