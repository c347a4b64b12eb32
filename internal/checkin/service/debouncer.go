package service

import (
	"sync"
	"time"
)

const DefaultDebounceWindow = 5 * time.Second

// Debouncer drops a token that repeats the last accepted token within the
// window.  It remembers a single slot, not a per-token history: a different
// token is always accepted and replaces the slot.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration

	last string
	at   time.Time
	has  bool
}

// NewDebouncer returns a Debouncer; window <= 0 selects DefaultDebounceWindow.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{window: window}
}

// Accept reports whether token should be processed at now.  Only accepted
// tokens update the remembered slot.
func (d *Debouncer) Accept(token string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.suppresses(token, now) {
		return false
	}
	d.last, d.at, d.has = token, now, true
	return true
}

// Suppresses reports whether Accept(token, now) would reject token, without
// updating the slot.
func (d *Debouncer) Suppresses(token string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suppresses(token, now)
}

func (d *Debouncer) suppresses(token string, now time.Time) bool {
	return d.has && token == d.last && now.Sub(d.at) < d.window
}

// Reset forgets the remembered token.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last, d.at, d.has = "", time.Time{}, false
}
