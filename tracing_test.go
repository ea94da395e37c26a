package sni

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/eringen/sni/mempool"
)

func TestSetupTracingNoopWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "test-service", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracedSourceSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	src := newMemSource(blockFees()...)
	traced := traceSource(src, tp)
	ctx := context.Background()

	_, err := traced.GetPost(ctx, "block-fees", "en")
	require.NoError(t, err)
	_, err = traced.GetPost(ctx, "nonexistent", "en")
	assert.ErrorIs(t, err, mempool.ErrNotFound)
	src.err = errUnavailable
	_, err = traced.GetParams(ctx)
	assert.ErrorIs(t, err, errUnavailable)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "mempool.GetPost", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Unset, spans[1].Status().Code, "not-found is not a span error")
	assert.Equal(t, "mempool.GetParams", spans[2].Name())
	assert.Equal(t, codes.Error, spans[2].Status().Code)
}
