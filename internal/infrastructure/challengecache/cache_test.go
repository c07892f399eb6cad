package challengecache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestCache_SetGetDelete(t *testing.T) {
	cache := New(5 * time.Minute)

	if _, ok := cache.Get("inst-1"); ok {
		t.Fatal("Get() on empty cache returned an entry")
	}

	cache.Set("inst-1", "data:image/png;base64,AAAA")
	got, ok := cache.Get("inst-1")
	if !ok || got != "data:image/png;base64,AAAA" {
		t.Fatalf("Get() = %q, %v", got, ok)
	}

	// Set overwrites.
	cache.Set("inst-1", "data:image/png;base64,BBBB")
	if got, _ := cache.Get("inst-1"); got != "data:image/png;base64,BBBB" {
		t.Fatalf("Get() after overwrite = %q", got)
	}

	cache.Delete("inst-1")
	if _, ok := cache.Get("inst-1"); ok {
		t.Fatal("Get() after Delete() returned an entry")
	}

	// Delete of absent key is a no-op.
	cache.Delete("inst-1")
}

func TestCache_TTLBoundary(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewWithClock(300*time.Second, clock)

	cache.Set("inst-1", "payload")

	clock.Advance(299 * time.Second)
	if _, ok := cache.Get("inst-1"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	clock.Advance(2 * time.Second)
	if _, ok := cache.Get("inst-1"); ok {
		t.Fatal("entry survived past its TTL")
	}
}

func TestCache_EntryTTLRestartsOnSet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewWithClock(300*time.Second, clock)

	cache.Set("inst-1", "first")
	clock.Advance(250 * time.Second)
	cache.Set("inst-1", "second")
	clock.Advance(250 * time.Second)

	got, ok := cache.Get("inst-1")
	if !ok || got != "second" {
		t.Fatalf("Get() = %q, %v, want refreshed entry", got, ok)
	}
}

func TestCache_Flush(t *testing.T) {
	cache := New(time.Minute)
	cache.Set("a", "1")
	cache.Set("b", "2")

	cache.Flush()
	if cache.Len() != 0 {
		t.Fatalf("Len() after Flush = %d, want 0", cache.Len())
	}
}

func TestCache_CleanupRoutine(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cache := NewWithClock(30*time.Second, clock)
	cache.StartCleanupRoutine(60 * time.Second)
	defer cache.Close()

	cache.Set("inst-1", "payload")

	// Wait for the cleanup goroutine to block on the ticker before
	// advancing past both the TTL and the cleanup interval.
	clock.BlockUntil(1)
	clock.Advance(61 * time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for cache.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("cleanup routine did not evict expired entry, Len() = %d", cache.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCache_CloseWithoutRoutine(t *testing.T) {
	cache := New(time.Minute)
	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}
