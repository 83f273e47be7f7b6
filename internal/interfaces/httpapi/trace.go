package httpapi

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("bolao-sca/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

// routeParamAttrs maps chi URL params to span attributes.
var routeParamAttrs = map[string]attribute.Key{
	"matchID": "bolao.match_id",
	"roundID": "bolao.round_id",
	"userID":  "bolao.user_id",
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		// Filtered routes such as /healthz have no parent; do not start root spans for helpers.
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(routeAttributes(ctx)...))
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}

// routeAttributes reports the matched route pattern and the pool identifiers in
// its path. Numeric ids are recorded as integers.
func routeAttributes(ctx context.Context) []attribute.KeyValue {
	rc := chi.RouteContext(ctx)
	if rc == nil {
		return nil
	}

	attrs := make([]attribute.KeyValue, 0, len(rc.URLParams.Keys)+1)
	if pattern := rc.RoutePattern(); pattern != "" {
		attrs = append(attrs, attribute.String("http.route", pattern))
	}
	for i, name := range rc.URLParams.Keys {
		key, ok := routeParamAttrs[name]
		if !ok || i >= len(rc.URLParams.Values) {
			continue
		}
		value := rc.URLParams.Values[i]
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			attrs = append(attrs, key.Int64(id))
			continue
		}
		attrs = append(attrs, key.String(value))
	}
	return attrs
}
