package redis

import (
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/legalaipro/lexauth"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, Config{TTL: time.Minute}), mr
}

func testSession(hash string) *lexauth.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &lexauth.Session{
		ID:        "sess-1",
		UserID:    "user-1",
		TokenHash: hash,
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCacheSetGet(t *testing.T) {
	cache, _ := newTestCache(t)

	session := testSession("hash-abc")
	if err := cache.Set("hash-abc", session); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := cache.Get("hash-abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != session.ID || got.UserID != session.UserID {
		t.Errorf("got session %q/%q, want %q/%q", got.ID, got.UserID, session.ID, session.UserID)
	}
	if got.TokenHash != "hash-abc" {
		t.Errorf("TokenHash = %q, want %q", got.TokenHash, "hash-abc")
	}
	if !got.ExpiresAt.Equal(session.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, session.ExpiresAt)
	}
}

func TestCacheGetMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get("no-such-hash")
	if !errors.Is(err, lexauth.ErrCacheNotFound) {
		t.Errorf("err = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheGetCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)

	mr.Set(defaultPrefix+"bad", "{not json")

	_, err := cache.Get("bad")
	if !errors.Is(err, lexauth.ErrCacheNotFound) {
		t.Errorf("err = %v, want ErrCacheNotFound", err)
	}
	// The corrupt key is dropped so the next verify can overwrite it.
	if mr.Exists(defaultPrefix + "bad") {
		t.Error("corrupt entry not deleted")
	}
}

func TestCacheDelete(t *testing.T) {
	cache, _ := newTestCache(t)

	if err := cache.Set("hash-del", testSession("hash-del")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cache.Delete("hash-del"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := cache.Get("hash-del"); !errors.Is(err, lexauth.ErrCacheNotFound) {
		t.Errorf("err after delete = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t)

	if err := cache.Set("hash-ttl", testSession("hash-ttl")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := cache.Get("hash-ttl"); !errors.Is(err, lexauth.ErrCacheNotFound) {
		t.Errorf("err after TTL = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheTTLBoundedBySessionExpiry(t *testing.T) {
	cache, mr := newTestCache(t)

	session := testSession("hash-short")
	session.ExpiresAt = time.Now().Add(10 * time.Second)
	if err := cache.Set("hash-short", session); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ttl := mr.TTL(defaultPrefix + "hash-short")
	if ttl > 10*time.Second {
		t.Errorf("redis TTL = %v, want <= session remaining lifetime", ttl)
	}
}

func TestCacheClear(t *testing.T) {
	cache, mr := newTestCache(t)

	for _, hash := range []string{"h1", "h2", "h3"} {
		if err := cache.Set(hash, testSession(hash)); err != nil {
			t.Fatalf("Set(%s): %v", hash, err)
		}
	}
	// A key outside our prefix must survive Clear.
	mr.Set("other:key", "keep")

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	for _, hash := range []string{"h1", "h2", "h3"} {
		if _, err := cache.Get(hash); !errors.Is(err, lexauth.ErrCacheNotFound) {
			t.Errorf("Get(%s) after Clear = %v, want ErrCacheNotFound", hash, err)
		}
	}
	if !mr.Exists("other:key") {
		t.Error("Clear removed a key outside the prefix")
	}
}
