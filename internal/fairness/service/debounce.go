package service

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls per key: only the last call made
// within the window runs, once the window passes without a newer call.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timers map[string]*time.Timer
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window, timers: make(map[string]*time.Timer)}
}

// Trigger schedules fn for key, replacing any call still waiting.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = t
}

// Cancel drops the waiting call of key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// Pending reports whether key has a call waiting.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[key]
	return ok
}

// Stop drops every waiting call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}
