package loki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func captureServer(t *testing.T, status int) (*httptest.Server, *PushRequest) {
	t.Helper()
	got := &PushRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestNewClient_EmptyURL(t *testing.T) {
	if _, err := NewClient("  ", nil); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestPushEventJSON_LabelsAndTimestamp(t *testing.T) {
	srv, got := captureServer(t, http.StatusNoContent)
	c, err := NewClient(srv.URL+"/", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := []byte(`{"eventType":"http_request","source":"authext","tenantId":"tenant 1","route":"/api/otpsend","createdAt":"2026-03-01T10:00:00Z"}`)
	if err := c.PushEventJSON(context.Background(), raw); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	if len(got.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(got.Streams))
	}
	s := got.Streams[0]
	want := map[string]string{
		"job":        Job,
		"event_type": "http_request",
		"source":     "authext",
		"tenant_id":  "tenant_1",
		"route":      "_api_otpsend",
		"stream":     StreamRequests,
	}
	for k, v := range want {
		if s.Stream[k] != v {
			t.Errorf("label %q = %q, want %q", k, s.Stream[k], v)
		}
	}
	if len(s.Values) != 1 || s.Values[0][1] != string(raw) {
		t.Fatalf("values = %v", s.Values)
	}
	if s.Values[0][0] != "1772359200000000000" {
		t.Errorf("timestamp = %s, want %d", s.Values[0][0], created.UnixNano())
	}
}

func TestPushEventJSON_NonEventLine(t *testing.T) {
	srv, got := captureServer(t, http.StatusNoContent)
	c, _ := NewClient(srv.URL, nil)
	if err := c.PushEventJSON(context.Background(), []byte("not json")); err != nil {
		t.Fatalf("PushEventJSON: %v", err)
	}
	s := got.Streams[0]
	if len(s.Stream) != 1 || s.Stream["job"] != Job {
		t.Errorf("labels = %v, want only job", s.Stream)
	}
}

func TestPush_Non2xx(t *testing.T) {
	srv, _ := captureServer(t, http.StatusBadRequest)
	c, _ := NewClient(srv.URL, nil)
	if err := c.Push(context.Background(), time.Now(), "line", nil); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestPushEventJSON_StreamLabelByEventType(t *testing.T) {
	cases := []struct {
		eventType string
		want      string
	}{
		{"auth_denied", StreamAuth},
		{"otp_delivered", StreamOtp},
		{"http_request", StreamRequests},
		{"", StreamRequests},
	}
	for _, tc := range cases {
		t.Run(tc.eventType, func(t *testing.T) {
			srv, got := captureServer(t, http.StatusNoContent)
			c, _ := NewClient(srv.URL, nil)
			raw := []byte(`{"eventType":"` + tc.eventType + `","tenantId":"t1"}`)
			if err := c.PushEventJSON(context.Background(), raw); err != nil {
				t.Fatalf("PushEventJSON: %v", err)
			}
			if s := got.Streams[0].Stream["stream"]; s != tc.want {
				t.Errorf("stream = %q, want %q", s, tc.want)
			}
		})
	}
}
