package interceptors

import (
	"log"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"custom-auth-extension/backend/internal/security"
)

// Authorize returns middleware that runs authorizer before the wrapped handler.
// A denied request gets 401 with an empty body and the handler never runs; the reason
// is logged and counted, never written to the response.
// counter may be nil.
func Authorize(gate string, authorizer security.Authorizer, counter metric.Int64Counter) func(http.Handler) http.Handler {
	if authorizer == nil {
		authorizer = security.AllowAll
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := authorizer.Authorize(r)
			reason := security.Reason(err)
			if counter != nil {
				counter.Add(r.Context(), 1, metric.WithAttributes(
					attribute.String("gate", gate),
					attribute.String("reason", reason),
				))
			}
			span := trace.SpanFromContext(r.Context())
			span.SetAttributes(attribute.String("authext.auth.gate", gate), attribute.String("authext.auth.reason", reason))
			if err != nil {
				log.Printf("auth: %s %s denied by %s gate: %s", r.Method, r.URL.Path, gate, reason)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
