// Package rate provides a per-identity fixed-window request limiter.
package rate

import (
	"sync"
	"time"
)

type record struct {
	count int
	reset time.Time
}

// Limiter counts requests per key inside a fixed window. Once a key
// reaches the limit, further requests are rejected until its window
// expires.
type Limiter struct {
	limit  int
	window time.Duration

	mu        sync.Mutex
	entries   map[string]record
	lastSweep time.Time

	now func() time.Time
}

// New creates a limiter allowing limit requests per key per window.
// A limit of zero or less disables limiting.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]record),
		now:     time.Now,
	}
}

// Allow reports whether key may proceed, consuming one slot if so.
// Check and increment happen under one lock so concurrent callers
// cannot over-admit a key.
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	rec := l.entries[key]
	if rec.reset.IsZero() || now.After(rec.reset) {
		rec.count = 0
		rec.reset = now.Add(l.window)
	}
	if rec.count >= l.limit {
		return false
	}
	rec.count++
	l.entries[key] = rec
	return true
}

// Keys returns the number of identities currently tracked.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// sweep drops expired entries, at most once per window.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now

	for key, rec := range l.entries {
		if now.After(rec.reset) {
			delete(l.entries, key)
		}
	}
}
