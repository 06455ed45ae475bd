package interceptors

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
)

type contextKey struct{ name string }

var (
	clientIPKey    = contextKey{"client_ip"}
	requestInfoKey = contextKey{"request_info"}
)

// RequestInfo collects what handlers learn about a call so interceptors that run after
// the handler (telemetry) can report it. Safe for concurrent use; nil-safe.
type RequestInfo struct {
	mu            sync.Mutex
	tenantID      string
	correlationID string
}

// SetCallout records the tenant and correlation id from a decoded request envelope.
func (i *RequestInfo) SetCallout(tenantID, correlationID string) {
	if i == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tenantID = tenantID
	i.correlationID = correlationID
}

// Callout returns the values set by SetCallout.
func (i *RequestInfo) Callout() (tenantID, correlationID string) {
	if i == nil {
		return "", ""
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tenantID, i.correlationID
}

// WithRequestInfo returns a context carrying a fresh RequestInfo.
func WithRequestInfo(ctx context.Context) (context.Context, *RequestInfo) {
	info := &RequestInfo{}
	return context.WithValue(ctx, requestInfoKey, info), info
}

// GetRequestInfo returns the RequestInfo from ctx, or nil if none was attached.
func GetRequestInfo(ctx context.Context) *RequestInfo {
	info, _ := ctx.Value(requestInfoKey).(*RequestInfo)
	return info
}

// WithClientIP returns a context with the caller's IP set.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP returns the client IP from ctx, or "unknown".
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// ClientIP returns the client IP from X-Forwarded-For, X-Real-IP, or the remote address.
func ClientIP(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		return s
	}
	if s := strings.TrimSpace(r.Header.Get("X-Real-IP")); s != "" {
		return s
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RequestContext attaches the client IP and a RequestInfo to every request.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientIP(r.Context(), ClientIP(r))
		ctx, _ = WithRequestInfo(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
