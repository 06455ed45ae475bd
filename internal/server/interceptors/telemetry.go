package interceptors

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"custom-auth-extension/backend/internal/telemetry"
	"custom-auth-extension/backend/internal/telemetry/domain"
)

// Source is the telemetry source of events emitted by the HTTP server.
const Source = "http_server"

// httpRequestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	ClientIP string `json:"client_ip"`
	Bytes    int    `json:"bytes"`
}

// Telemetry returns middleware that emits an http_request event (auth_denied for a 401) after each request and
// records its duration. Best-effort: the emit runs in the background and failures are logged.
// emitter and duration may be nil. skipPaths are not reported (e.g. health probes).
func Telemetry(emitter telemetry.EventEmitter, duration metric.Float64Histogram, skipPaths map[string]bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			route := routePattern(r)
			if duration != nil {
				duration.Record(r.Context(), elapsed.Seconds(), metric.WithAttributes(
					attribute.String("http.route", route),
					attribute.Int("http.response.status_code", status),
				))
			}
			if emitter == nil {
				return
			}
			meta, _ := json.Marshal(httpRequestMetadata{
				Method:   r.Method,
				Path:     r.URL.Path,
				ClientIP: GetClientIP(r.Context()),
				Bytes:    ww.BytesWritten(),
			})
			eventType := domain.EventHTTPRequest
			if status == http.StatusUnauthorized {
				eventType = domain.EventAuthDenied
			}
			tenantID, correlationID := GetRequestInfo(r.Context()).Callout()
			event := &domain.Event{
				ID:            uuid.NewString(),
				EventType:     eventType,
				Source:        Source,
				TenantID:      tenantID,
				CorrelationID: correlationID,
				RequestID:     chimw.GetReqID(r.Context()),
				Route:         route,
				Status:        status,
				DurationMs:    elapsed.Milliseconds(),
				Metadata:      meta,
				CreatedAt:     start.UTC(),
			}
			telemetry.EmitAsync(emitter, r.Context(), event)
		})
	}
}

// routePattern returns the matched chi route, falling back to the raw path.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
