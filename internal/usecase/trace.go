package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer trace.Tracer = otel.Tracer("bolao-sca/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// Span attribute keys shared by the pool operations.
const (
	attrUserID       = attribute.Key("bolao.user_id")
	attrMatchID      = attribute.Key("bolao.match_id")
	attrRoundID      = attribute.Key("bolao.round_id")
	attrRankingScope = attribute.Key("bolao.ranking_scope")
)

// startUsecaseSpan only starts a span under an existing trace, so background
// calls and tests stay span-free.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
