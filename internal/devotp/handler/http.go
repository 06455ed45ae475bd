// Package handler serves the dev-only OTP inbox over HTTP.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"custom-auth-extension/backend/internal/devotp"
)

const devOTPNote = "DEV MODE ONLY"

// OTPResponse is the body of GET /dev/otp.
type OTPResponse struct {
	Identifier string    `json:"identifier"`
	OTP        string    `json:"otp"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Note       string    `json:"note"`
}

// Server serves GET /dev/otp?identifier=...
type Server struct {
	store devotp.Store
}

// NewServer returns a handler reading from store.
func NewServer(store devotp.Store) *Server {
	return &Server{store: store}
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(r.URL.Query().Get("identifier"))
	if identifier == "" {
		http.Error(w, "identifier is required", http.StatusBadRequest)
		return
	}
	if s.store == nil {
		http.Error(w, "dev otp store not configured", http.StatusNotFound)
		return
	}
	e, ok := s.store.Get(r.Context(), identifier)
	if !ok {
		http.Error(w, "otp not found or expired", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(OTPResponse{
		Identifier: identifier,
		OTP:        e.OTP,
		ExpiresAt:  e.ExpiresAt,
		Note:       devOTPNote,
	})
}
