// Package loki provides a client to push telemetry events to Grafana Loki.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"custom-auth-extension/backend/internal/telemetry/domain"
)

// Job is the job label on every stream this service pushes.
const Job = "authext"

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single stream with labels and log entries.
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"` // [timestamp_ns, log_line]
}

// Stream label values. Denials and OTP deliveries get their own streams so alerting
// queries do not scan per-request traffic.
const (
	StreamRequests = "requests"
	StreamAuth     = "auth"
	StreamOtp      = "otp"
)

// StreamFor returns the stream label for an event type.
func StreamFor(eventType string) string {
	switch eventType {
	case domain.EventAuthDenied:
		return StreamAuth
	case domain.EventOtpDelivered:
		return StreamOtp
	default:
		return StreamRequests
	}
}

var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:]`)

// eventFields are the event fields promoted to stream labels.
type eventFields struct {
	TenantID  string    `json:"tenantId"`
	EventType string    `json:"eventType"`
	Source    string    `json:"source"`
	Route     string    `json:"route"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client pushes log lines to one Loki instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL (e.g. http://localhost:3100). httpClient may be nil.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("loki: base URL is empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: httpClient}, nil
}

// PushEventJSON pushes a telemetry event (Kafka message value) with labels and timestamp taken from it.
// If the value is not an event, the raw line is pushed with the current time and only the job label.
func (c *Client) PushEventJSON(ctx context.Context, rawJSON []byte) error {
	labels := map[string]string{}
	ts := time.Now().UTC()
	var fields eventFields
	if err := json.Unmarshal(rawJSON, &fields); err == nil {
		labels["tenant_id"] = fields.TenantID
		labels["event_type"] = fields.EventType
		labels["source"] = fields.Source
		labels["route"] = fields.Route
		labels["stream"] = StreamFor(fields.EventType)
		if !fields.CreatedAt.IsZero() {
			ts = fields.CreatedAt
		}
	}
	return c.Push(ctx, ts, string(rawJSON), labels)
}

// Push sends one log line. Empty label values are dropped; the rest are sanitized.
// Returns an error if the request fails or Loki returns non-2xx.
func (c *Client) Push(ctx context.Context, timestamp time.Time, line string, labels map[string]string) error {
	streamLabels := make(map[string]string, len(labels)+1)
	streamLabels["job"] = Job
	for k, v := range labels {
		sanitized := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_")
		if sanitized != "" {
			streamLabels[k] = sanitized
		}
	}
	body := PushRequest{
		Streams: []Stream{{
			Stream: streamLabels,
			Values: [][]string{{strconv.FormatInt(timestamp.UnixNano(), 10), line}},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/loki/api/v1/push", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
