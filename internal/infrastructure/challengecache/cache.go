// Package challengecache holds rendered authentication challenges (QR data
// URIs) for a short window while a human scans them.
package challengecache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	payload   string
	expiresAt time.Time
}

// Cache is a fixed-TTL key-value store keyed by session id. Entries expire
// lazily on read and eagerly via the cleanup routine.
type Cache struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]entry

	cancel chan struct{}
	done   chan struct{}
}

// New creates a cache whose entries live for ttl.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, clockwork.NewRealClock())
}

// NewWithClock creates a cache driven by the given clock.
func NewWithClock(ttl time.Duration, clock clockwork.Clock) *Cache {
	return &Cache{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Set stores payload under sessionID, replacing any previous entry and
// restarting its TTL.
func (c *Cache) Set(sessionID, payload string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[sessionID] = entry{
		payload:   payload,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

// Get returns the unexpired payload for sessionID.
func (c *Cache) Get(sessionID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sessionID]
	if !ok {
		return "", false
	}
	if c.clock.Now().After(e.expiresAt) {
		delete(c.entries, sessionID)
		return "", false
	}
	return e.payload, true
}

// Delete drops the entry for sessionID if present.
func (c *Cache) Delete(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, sessionID)
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// StartCleanupRoutine starts a background goroutine that periodically
// removes expired entries. The goroutine is stopped when Close is called.
func (c *Cache) StartCleanupRoutine(interval time.Duration) {
	c.cancel = make(chan struct{})
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)

		ticker := c.clock.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.cancel:
				return
			case <-ticker.Chan():
				c.removeExpired()
			}
		}
	}()
}

// Close stops the cleanup goroutine and waits for it to exit. It is safe to
// call Close even if StartCleanupRoutine was never called.
func (c *Cache) Close() error {
	if c.cancel != nil {
		close(c.cancel)
		<-c.done
	}
	return nil
}
