package usecase

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartUsecaseSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	previous := usecaseTracer
	usecaseTracer = provider.Tracer("test")
	t.Cleanup(func() { usecaseTracer = previous })

	_, orphan := startUsecaseSpan(context.Background(), "usecase.PredictionService.Submit", attrMatchID.Int64(1))
	orphan.End()
	if got := len(recorder.Ended()); got != 0 {
		t.Fatalf("span without a parent must not be recorded, got %d", got)
	}

	ctx, parent := provider.Tracer("test").Start(context.Background(), "request")
	_, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit", attrUserID.String("alice"), attrMatchID.Int64(7))
	span.End()
	parent.End()

	ended := recorder.Ended()
	if len(ended) != 2 || ended[0].Name() != "usecase.PredictionService.Submit" {
		t.Fatalf("unexpected spans: %d", len(ended))
	}
	attrs := attribute.NewSet(ended[0].Attributes()...)
	if v, ok := attrs.Value(attrMatchID); !ok || v.AsInt64() != 7 {
		t.Fatalf("missing match id attribute: %v", ended[0].Attributes())
	}
	if v, ok := attrs.Value(attrUserID); !ok || v.AsString() != "alice" {
		t.Fatalf("missing user id attribute: %v", ended[0].Attributes())
	}
}
