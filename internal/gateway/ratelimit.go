package gateway

import (
	"sync"
	"time"
)

const maxTrackedIdentities = 10000

// Limiter is a fixed-window request counter per client identity. Identity
// values come from request headers, so under a proxyless deployment this is
// a soft limit that a client could spoof.
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	records map[string]*windowRecord
}

type windowRecord struct {
	count       int
	windowStart time.Time
}

// NewLimiter creates a limiter admitting limit requests per window.
func NewLimiter(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		limit:   limit,
		window:  window,
		records: make(map[string]*windowRecord),
	}
}

// Allow reports whether a request from identity fits in the current window.
func (l *Limiter) Allow(identity string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[identity]
	if !ok || now.Sub(rec.windowStart) >= l.window {
		if !ok && len(l.records) >= maxTrackedIdentities {
			// Evict an entry to bound the map.
			for k := range l.records {
				delete(l.records, k)
				break
			}
		}
		l.records[identity] = &windowRecord{count: 1, windowStart: now}
		return true
	}

	if rec.count < l.limit {
		rec.count++
		return true
	}
	return false
}
