package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})
	return recorder
}

func TestStartServiceSpan(t *testing.T) {
	recorder := useSpanRecorder(t)
	orderID := uuid.New()

	ctx, span := telemetry.StartServiceSpan(context.Background(), "order", "approve",
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrItemCount, 2,
	)
	assert.NotEmpty(t, telemetry.GetTraceID(ctx))
	telemetry.SetAttributes(span, telemetry.SpanAttrAmountMl, int64(150), "ignored")
	telemetry.AddEvent(span, "stock_debited", telemetry.SpanAttrProductID, "p-1")
	telemetry.RecordError(span, errors.New("insufficient stock"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "order.approve", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Contains(t, got.Attributes(), attribute.String("order_id", orderID.String()))
	assert.Contains(t, got.Attributes(), attribute.Int("item_count", 2))
	assert.Contains(t, got.Attributes(), attribute.Int64("amount_ml", 150))
	require.Len(t, got.Events(), 2)
	assert.Equal(t, "stock_debited", got.Events()[0].Name)
}

func TestTracingHelpers_NilSafe(t *testing.T) {
	assert.Empty(t, telemetry.GetTraceID(context.Background()))
	telemetry.SetAttributes(nil, "k", "v")
	telemetry.AddEvent(nil, "event")
	telemetry.RecordError(nil, errors.New("x"))
}
