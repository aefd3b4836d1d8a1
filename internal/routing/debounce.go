package routing

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers into a single callback per key.
// Scheduling a key cancels and rearms any earlier pending callback for the
// same key, so only the last trigger inside the quiet window fires. Each
// input surface (address field, stop editor) owns its own key.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewDebouncer creates a Debouncer with the given quiet window.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 800 * time.Millisecond
	}
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arranges for fn to run after the quiet window, cancelling any
// previously scheduled call for the same key. A cancelled call has taken no
// side effects.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}

	// The callback runs only while it still owns the key: a timer that fired
	// just before a rearm or Cancel took the lock must not touch the new
	// entry or invoke fn.
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if current, ok := d.timers[key]; !ok || current != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Cancel drops any pending callback for the key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
}

// Stop cancels every pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
