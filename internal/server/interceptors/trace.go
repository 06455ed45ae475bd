package interceptors

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const tracerName = "custom-auth-extension/backend/internal/server"

// Trace starts one server span per request, continuing any W3C trace context the caller sent.
// It uses the global TracerProvider and propagator. The span is renamed to the matched chi
// route pattern once routing has run, keeping span names low-cardinality.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := otel.Tracer(tracerName).Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
			),
		)
		defer span.End()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		span.SetName(r.Method + " " + routePattern(r))
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if tenantID, correlationID := GetRequestInfo(ctx).Callout(); correlationID != "" || tenantID != "" {
			span.SetAttributes(attribute.String("authext.tenant_id", tenantID), attribute.String("authext.correlation_id", correlationID))
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}
