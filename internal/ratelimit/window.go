// Package ratelimit provides the two throttles the bot needs: an hourly
// sliding-window quota on LLM processing per user, and a token-bucket
// limiter on the webhook endpoint per source.
package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// maxTrackedKeys caps the window table. Entries idle for a full period
// carry no quota information anymore and are evicted by TTL.
const maxTrackedKeys = 1024

// Window is a sliding-window counter. Allow records an event and reports
// whether the caller stays within limit events per period.
type Window struct {
	limit  int
	period time.Duration

	mu     sync.Mutex
	events *expirable.LRU[int64, []time.Time]
	now    func() time.Time
}

// NewWindow creates a sliding-window counter.
func NewWindow(limit int, period time.Duration) *Window {
	return &Window{
		limit:  limit,
		period: period,
		events: expirable.NewLRU[int64, []time.Time](maxTrackedKeys, nil, period),
		now:    time.Now,
	}
}

// Allow records an event for the key and reports whether it fits in the
// window. A rejected event is not recorded.
func (w *Window) Allow(key int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	recent := w.trim(key)
	if len(recent) >= w.limit {
		w.events.Add(key, recent)
		return false
	}

	w.events.Add(key, append(recent, w.now()))
	return true
}

// Remaining reports how many events the key has left in the current window.
func (w *Window) Remaining(key int64) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	recent := w.trim(key)
	w.events.Add(key, recent)
	if left := w.limit - len(recent); left > 0 {
		return left
	}
	return 0
}

// trim drops events older than the window. Caller holds the lock.
func (w *Window) trim(key int64) []time.Time {
	cutoff := w.now().Add(-w.period)
	events, _ := w.events.Get(key)
	recent := events[:0]
	for _, t := range events {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent
}
