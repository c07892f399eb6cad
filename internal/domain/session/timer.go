package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// timerSet maps session ids to single pending timers. Scheduling an id
// that already has a timer replaces it, which gives reconnect scheduling
// its debounce behavior: bursts of close events within the interval
// collapse into one fire.
type timerSet struct {
	clock clockwork.Clock

	mu     sync.Mutex
	timers map[string]clockwork.Timer
}

func newTimerSet(clock clockwork.Clock) *timerSet {
	return &timerSet{
		clock:  clock,
		timers: make(map[string]clockwork.Timer),
	}
}

// Schedule arms fn to run after d, replacing any pending timer for id.
// The callback deregisters itself before running so a concurrent
// Schedule during the callback arms a fresh timer rather than racing
// the old one.
func (ts *timerSet) Schedule(id string, d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if old, ok := ts.timers[id]; ok {
		old.Stop()
	}

	var t clockwork.Timer
	t = ts.clock.AfterFunc(d, func() {
		ts.mu.Lock()
		// Only run if we are still the registered timer for this id.
		if ts.timers[id] != t {
			ts.mu.Unlock()
			return
		}
		delete(ts.timers, id)
		ts.mu.Unlock()
		fn()
	})
	ts.timers[id] = t
}

// Cancel stops and removes the pending timer for id, if any. Reports
// whether a timer was pending.
func (ts *timerSet) Cancel(id string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	t, ok := ts.timers[id]
	if !ok {
		return false
	}
	t.Stop()
	delete(ts.timers, id)
	return true
}

// CancelAll stops every pending timer. Used on shutdown.
func (ts *timerSet) CancelAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for id, t := range ts.timers {
		t.Stop()
		delete(ts.timers, id)
	}
}

// Pending reports whether a timer is armed for id.
func (ts *timerSet) Pending(id string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	_, ok := ts.timers[id]
	return ok
}
