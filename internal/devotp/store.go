// Package devotp keeps the last one-time code sent to each identifier, used only when
// dev OTP mode is enabled (GET /dev/otp).
package devotp

import (
	"context"
	"sync"
	"time"

	extdomain "custom-auth-extension/backend/internal/extension/domain"
)

// DefaultTTL is how long a code stays readable after OtpSend.
const DefaultTTL = 10 * time.Minute

// Store holds plain OTPs by identifier for dev-only retrieval. Never enabled in production.
type Store interface {
	// Put stores otp for identifier until expiresAt, replacing any earlier code.
	Put(ctx context.Context, identifier, otp string, expiresAt time.Time)
	// Get returns the entry for identifier if present and not expired.
	Get(ctx context.Context, identifier string) (Entry, bool)
}

// Entry is one stored code.
type Entry struct {
	OTP       string
	ExpiresAt time.Time
}

// MemoryStore is an in-memory Store. It also acts as an OTP notifier for the OtpSend handler.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]Entry
	ttl  time.Duration
	nowF func() time.Time
}

// NewMemoryStore returns an empty store whose NotifyOtp entries live for ttl (DefaultTTL when <= 0).
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		m:    make(map[string]Entry),
		ttl:  ttl,
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Put stores otp for identifier until expiresAt. Expired entries for other identifiers
// are dropped on the way, so the map stays bounded by the codes sent within one TTL.
func (s *MemoryStore) Put(ctx context.Context, identifier, otp string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowF()
	for id, e := range s.m {
		if !e.ExpiresAt.After(now) {
			delete(s.m, id)
		}
	}
	s.m[identifier] = Entry{OTP: otp, ExpiresAt: expiresAt}
}

// Get returns the entry for identifier if present and not expired. Expired entries are removed.
func (s *MemoryStore) Get(ctx context.Context, identifier string) (Entry, bool) {
	s.mu.RLock()
	e, ok := s.m[identifier]
	s.mu.RUnlock()
	if !ok {
		return Entry{}, false
	}
	if !e.ExpiresAt.After(s.nowF()) {
		s.mu.Lock()
		if cur, ok := s.m[identifier]; ok && cur == e {
			delete(s.m, identifier)
		}
		s.mu.Unlock()
		return Entry{}, false
	}
	return e, true
}

// NotifyOtp stores the code for the notification's identifier.
func (s *MemoryStore) NotifyOtp(ctx context.Context, n extdomain.OtpNotification) error {
	if n.Identifier == "" {
		return nil
	}
	s.Put(ctx, n.Identifier, n.Code, s.nowF().Add(s.ttl))
	return nil
}
