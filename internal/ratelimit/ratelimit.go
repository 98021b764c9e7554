// Package ratelimit provides a per-user sliding-window request throttle.
package ratelimit

import (
	"sync"
	"time"

	"github.com/kaizenapp/kaizen/pkg/models"
)

// Window is the trailing interval requests are counted over.
const Window = 60 * time.Second

// DefaultRequestsPerMinute is the admission ceiling when none is configured.
const DefaultRequestsPerMinute = 30

// Decision is the outcome of a rate-limit check.
type Decision struct {
	// Allowed is true when the request may proceed.
	Allowed bool
	// RetryAfter is how long to wait before the next attempt, set only
	// when the request was rejected. Always at least one second.
	RetryAfter time.Duration
}

// Limiter counts requests per user within a trailing 60-second window.
//
// Check and Record are deliberately separate calls: two concurrent requests
// from the same user can both pass Check before either Records. Throttling
// is best-effort, not a hard guarantee.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	ceiling int
	now     func() time.Time
}

// New creates a Limiter with the given per-minute ceiling.
// A non-positive ceiling falls back to DefaultRequestsPerMinute.
func New(requestsPerMinute int) *Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	return &Limiter{
		windows: make(map[string][]time.Time),
		ceiling: requestsPerMinute,
		now:     time.Now,
	}
}

// SetCeiling updates the per-minute ceiling at runtime.
func (l *Limiter) SetCeiling(requestsPerMinute int) {
	if requestsPerMinute <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ceiling = requestsPerMinute
}

// prune drops timestamps older than the window. Users whose window empties
// are evicted entirely so the map does not grow with the user population.
// Caller must hold l.mu.
func (l *Limiter) prune(userID string, now time.Time) []time.Time {
	cutoff := now.Add(-Window)
	stamps := l.windows[userID]

	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) == 0 {
		delete(l.windows, userID)
		return nil
	}
	l.windows[userID] = kept
	return kept
}

// Check reports whether a request from the user may proceed. It does not
// consume an admission slot; call Record after the request is accepted.
func (l *Limiter) Check(userID string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	stamps := l.prune(userID, now)

	if len(stamps) >= l.ceiling {
		// Wait until the oldest retained request leaves the window.
		oldest := stamps[0]
		for _, ts := range stamps[1:] {
			if ts.Before(oldest) {
				oldest = ts
			}
		}
		retry := oldest.Add(Window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		// Round up: a caller that waits exactly RetryAfter must find the
		// oldest slot freed, so the wait never truncates downward.
		retry = ((retry + time.Second - 1) / time.Second) * time.Second
		return Decision{Allowed: false, RetryAfter: retry}
	}

	return Decision{Allowed: true}
}

// Record appends the current timestamp to the user's window. Call only
// after a successful admission.
func (l *Limiter) Record(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows[userID] = append(l.windows[userID], l.now())
}

// Count returns the number of in-window requests for the user.
func (l *Limiter) Count(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(userID, l.now()))
}

// Stats returns aggregate counts across all tracked users.
func (l *Limiter) Stats() models.RateLimitStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, stamps := range l.windows {
		total += len(stamps)
	}
	return models.RateLimitStats{
		TotalUsers:    len(l.windows),
		TotalRequests: total,
	}
}

// Reset clears all tracked windows.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string][]time.Time)
}
