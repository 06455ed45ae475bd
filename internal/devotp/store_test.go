package devotp

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	extdomain "custom-auth-extension/backend/internal/extension/domain"
)

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	expiresAt := time.Now().UTC().Add(5 * time.Minute)

	store.Put(ctx, "user@example.com", "123456", expiresAt)

	e, ok := store.Get(ctx, "user@example.com")
	if !ok {
		t.Fatal("Get should return OTP after Put")
	}
	if e.OTP != "123456" || !e.ExpiresAt.Equal(expiresAt) {
		t.Errorf("entry = %+v", e)
	}
}

func TestMemoryStore_Get_ReturnsFalseWhenMissing(t *testing.T) {
	e, ok := NewMemoryStore(0).Get(context.Background(), "nobody@example.com")
	if ok {
		t.Error("Get should return false when OTP is missing")
	}
	if e.OTP != "" {
		t.Errorf("otp = %q, want empty string", e.OTP)
	}
}

func TestMemoryStore_Get_ExpiredEntriesRemoved(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	store.Put(ctx, "user@example.com", "123456", time.Now().UTC().Add(-time.Minute))

	if _, ok := store.Get(ctx, "user@example.com"); ok {
		t.Error("Get should return false for expired OTP")
	}
	store.mu.RLock()
	_, present := store.m["user@example.com"]
	store.mu.RUnlock()
	if present {
		t.Error("expired entry should be removed")
	}
}

func TestMemoryStore_LaterCodeReplacesEarlier(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	exp := time.Now().UTC().Add(time.Minute)
	store.Put(ctx, "user@example.com", "111111", exp)
	store.Put(ctx, "user@example.com", "222222", exp)
	if e, _ := store.Get(ctx, "user@example.com"); e.OTP != "222222" {
		t.Errorf("otp = %q, want 222222", e.OTP)
	}
}

func TestMemoryStore_NotifyOtp(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.nowF = func() time.Time { return now }

	err := store.NotifyOtp(context.Background(), extdomain.OtpNotification{Identifier: "user@example.com", Code: "123456"})
	if err != nil {
		t.Fatalf("NotifyOtp: %v", err)
	}
	e, ok := store.Get(context.Background(), "user@example.com")
	if !ok || e.OTP != "123456" {
		t.Fatalf("Get = %+v, %v", e, ok)
	}
	if !e.ExpiresAt.Equal(now.Add(time.Minute)) {
		t.Errorf("expiresAt = %v, want %v", e.ExpiresAt, now.Add(time.Minute))
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "user@example.com"); ok {
		t.Error("entry should expire after ttl")
	}
}

func TestMemoryStore_NotifyOtp_EmptyIdentifierIgnored(t *testing.T) {
	store := NewMemoryStore(0)
	if err := store.NotifyOtp(context.Background(), extdomain.OtpNotification{Code: "1"}); err != nil {
		t.Fatalf("NotifyOtp: %v", err)
	}
	if len(store.m) != 0 {
		t.Errorf("store has %d entries, want 0", len(store.m))
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		id := "user" + strconv.Itoa(i) + "@example.com"
		go func() {
			defer wg.Done()
			_ = store.NotifyOtp(ctx, extdomain.OtpNotification{Identifier: id, Code: "123456"})
		}()
		go func() {
			defer wg.Done()
			store.Get(ctx, id)
		}()
	}
	wg.Wait()
}

func TestMemoryStore_Put_SweepsExpiredEntries(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.nowF = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		store.Put(ctx, "old"+strconv.Itoa(i)+"@example.com", "111111", now.Add(time.Minute))
	}
	store.Put(ctx, "live@example.com", "222222", now.Add(10*time.Minute))

	now = now.Add(2 * time.Minute)
	store.Put(ctx, "new@example.com", "333333", now.Add(time.Minute))

	store.mu.RLock()
	size := len(store.m)
	store.mu.RUnlock()
	if size != 2 {
		t.Fatalf("entries after sweep = %d, want 2 (live and new)", size)
	}
	if e, ok := store.Get(ctx, "live@example.com"); !ok || e.OTP != "222222" {
		t.Errorf("unexpired entry lost: %+v, %v", e, ok)
	}
}
