// Package handler exposes the extension service over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"custom-auth-extension/backend/internal/extension/domain"
	"custom-auth-extension/backend/internal/extension/service"
	"custom-auth-extension/backend/internal/server/interceptors"
)

// MaxBodyBytes caps an inbound envelope.
const MaxBodyBytes = 1 << 20

// Server serves the four extension endpoints.
type Server struct {
	svc *service.Service
}

// NewServer returns handlers backed by svc.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// AttributeCollectionStart handles POST /api/attributecollectionstart.
func (s *Server) AttributeCollectionStart(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "attributecollectionstart", s.svc.AttributeCollectionStart)
}

// AttributeCollectionSubmit handles POST /api/attributecollectionsubmit.
func (s *Server) AttributeCollectionSubmit(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "attributecollectionsubmit", s.svc.AttributeCollectionSubmit)
}

// OtpSend handles POST /api/otpsend.
func (s *Server) OtpSend(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "otpsend", s.svc.OtpSend)
}

// TokenIssuanceStart handles POST /api/tokenissuancestart.
func (s *Server) TokenIssuanceStart(w http.ResponseWriter, r *http.Request) {
	serve(w, r, "tokenissuancestart", s.svc.TokenIssuanceStart)
}

// serve decodes the envelope, runs fn and writes its response.
func serve[T domain.Payload](w http.ResponseWriter, r *http.Request, name string, fn func(context.Context, domain.Request[T]) domain.Response) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Printf("extension: %s: payload over %d bytes", name, tooLarge.Limit)
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		log.Printf("extension: %s: reading payload: %v", name, err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	log.Printf("extension: %s: payload: %s", name, body)

	var req domain.Request[T]
	if err := json.Unmarshal(body, &req); err != nil {
		log.Printf("extension: %s: decoding payload: %v", name, err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	callout := req.Data.Callout()
	interceptors.GetRequestInfo(r.Context()).SetCallout(callout.TenantID, callout.AuthenticationContext.CorrelationID)

	writeJSON(w, http.StatusOK, fn(r.Context(), req))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("extension: encoding response: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
