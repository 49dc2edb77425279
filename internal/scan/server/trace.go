package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Its-donkey/hawkeye/logging"
)

const tracerName = "github.com/Its-donkey/hawkeye/internal/scan/server"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// traceRequests opens a server span per request. Spans are no-ops unless a
// tracer provider is installed with otel.SetTracerProvider.
func traceRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer().Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()

		if id := logging.RequestIDFromContext(ctx); id != "" {
			span.SetAttributes(attribute.String("hawkeye.request_id", id))
		}

		next.ServeHTTP(w, r.WithContext(ctx))

		if rctx := chi.RouteContext(ctx); rctx != nil && rctx.RoutePattern() != "" {
			span.SetAttributes(attribute.String("http.route", rctx.RoutePattern()))
		}
	})
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
