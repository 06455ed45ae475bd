// Package handler serves liveness and readiness over HTTP and the gRPC health protocol.
package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// checkTimeout bounds one readiness probe.
const checkTimeout = 2 * time.Second

// Pinger is used for readiness (e.g. *sql.DB). Nil skips the DB check.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server reports process health.
type Server struct {
	pinger Pinger
}

// NewServer returns a health server. pinger may be nil.
func NewServer(pinger Pinger) *Server {
	return &Server{pinger: pinger}
}

// Check returns nil when the service can take traffic.
func (s *Server) Check(ctx context.Context) error {
	if s == nil || s.pinger == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return s.pinger.PingContext(ctx)
}

type statusResponse struct {
	Status string `json:"status"`
}

// Live handles GET /healthz. It never touches dependencies.
func (s *Server) Live(w http.ResponseWriter, r *http.Request) {
	writeStatus(w, http.StatusOK, "SERVING")
}

// Ready handles GET /readyz.
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if err := s.Check(r.Context()); err != nil {
		log.Printf("health: readiness check failed: %v", err)
		writeStatus(w, http.StatusServiceUnavailable, "NOT_SERVING")
		return
	}
	writeStatus(w, http.StatusOK, "SERVING")
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(statusResponse{Status: status})
}
