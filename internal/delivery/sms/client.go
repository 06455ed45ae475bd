// Package sms delivers one-time codes to phone-number identifiers through an SMS gateway.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	extdomain "custom-auth-extension/backend/internal/extension/domain"
)

const (
	defaultTimeout = 15 * time.Second
	defaultBaseURL = "https://www.smslocal.com/dev/bulkV2"

	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// ErrNoAPIKey is returned when the client has no gateway API key.
var ErrNoAPIKey = errors.New("sms: API key not configured")

// Client sends OTP messages via the gateway's otp route.
type Client struct {
	APIKey     string
	BaseURL    string
	Sender     string
	HTTPClient *http.Client
}

// NewClient returns a client for apiKey. Empty baseURL uses the public gateway; sender may be empty.
func NewClient(apiKey, baseURL, sender string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type sendRequest struct {
	Route     string `json:"route"`
	Numbers   string `json:"numbers"`
	Variables string `json:"variables"`
	SenderID  string `json:"sender_id,omitempty"`
}

// SendOTP sends otp to phone (digits only, country code first). The code is never logged.
func (c *Client) SendOTP(ctx context.Context, phone, otp string) error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	raw, err := json.Marshal(sendRequest{Route: "otp", Numbers: phone, Variables: otp, SenderID: c.Sender})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("sms: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}

// NotifyOtp sends n.Code when n.Identifier is a phone number. Email and other identifiers are skipped.
func (c *Client) NotifyOtp(ctx context.Context, n extdomain.OtpNotification) error {
	phone, ok := PhoneDigits(n.Identifier)
	if !ok {
		return nil
	}
	return c.SendOTP(ctx, phone, n.Code)
}

// PhoneDigits returns the digits of a phone identifier such as "+34 600-123-456".
// ok is false for anything else (e.g. an email address).
func PhoneDigits(identifier string) (digits string, ok bool) {
	s := strings.TrimSpace(identifier)
	s = strings.TrimPrefix(s, "+")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return "", false
		}
	}
	if n := b.Len(); n < minPhoneDigits || n > maxPhoneDigits {
		return "", false
	}
	return b.String(), true
}
