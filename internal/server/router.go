// Package server assembles the HTTP routes and middleware chain of the extension service.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	exthandler "custom-auth-extension/backend/internal/extension/handler"
	healthhandler "custom-auth-extension/backend/internal/health/handler"
	"custom-auth-extension/backend/internal/security"
	"custom-auth-extension/backend/internal/server/interceptors"
	"custom-auth-extension/backend/internal/telemetry"
	telemetryotel "custom-auth-extension/backend/internal/telemetry/otel"
)

// Gate names used in logs and the auth decision metric.
const (
	GateBearer = "bearer"
	GateLegacy = "legacy_header"
)

// probePaths are not reported to telemetry.
var probePaths = map[string]bool{"/healthz": true, "/readyz": true}

// Deps holds the handlers and collaborators wired into the router.
type Deps struct {
	// Extension serves the four /api routes. Required.
	Extension *exthandler.Server
	// Bearer gates attributecollectionsubmit, otpsend and tokenissuancestart. Nil allows all.
	Bearer security.Authorizer
	// Legacy gates attributecollectionstart. Nil allows all.
	Legacy security.Authorizer
	// Health serves /healthz and /readyz. Nil serves an always-ready health server.
	Health *healthhandler.Server
	// DevOTP serves GET /dev/otp. If nil, the route is not registered. Set only in development.
	DevOTP http.Handler
	// Emitter receives one telemetry event per request. May be nil.
	Emitter telemetry.EventEmitter
	// Instruments record auth decisions and request duration. Nil uses no-op instruments.
	Instruments *telemetryotel.Instruments
}

// NewRouter returns the service's HTTP handler.
//
// Route → gate mapping:
//   - POST /api/attributecollectionstart  → legacy header gate
//   - POST /api/attributecollectionsubmit → bearer gate
//   - POST /api/otpsend                   → bearer gate
//   - POST /api/tokenissuancestart        → bearer gate
//   - GET  /healthz, /readyz              → no gate
//   - GET  /dev/otp                       → no gate, development only
func NewRouter(deps Deps) http.Handler {
	in := deps.Instruments
	if in == nil {
		in = telemetryotel.NoopInstruments()
	}
	health := deps.Health
	if health == nil {
		health = healthhandler.NewServer(nil)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(interceptors.RequestContext)
	r.Use(interceptors.Trace)
	r.Use(interceptors.Telemetry(deps.Emitter, in.RequestDuration, probePaths))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", health.Live)
	r.Get("/readyz", health.Ready)
	if deps.DevOTP != nil {
		r.Method(http.MethodGet, "/dev/otp", deps.DevOTP)
	}

	ext := deps.Extension
	r.Route("/api", func(r chi.Router) {
		r.With(interceptors.Authorize(GateLegacy, deps.Legacy, in.AuthDecisions)).
			Post("/attributecollectionstart", ext.AttributeCollectionStart)

		r.Group(func(r chi.Router) {
			r.Use(interceptors.Authorize(GateBearer, deps.Bearer, in.AuthDecisions))
			r.Post("/attributecollectionsubmit", ext.AttributeCollectionSubmit)
			r.Post("/otpsend", ext.OtpSend)
			r.Post("/tokenissuancestart", ext.TokenIssuanceStart)
		})
	})
	return r
}
