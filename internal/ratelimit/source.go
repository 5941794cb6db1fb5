package ratelimit

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	// maxTrackedSources caps the limiter table so spraying distinct
	// source addresses cannot grow memory without bound.
	maxTrackedSources = 1000
	// sourceTTL evicts idle sources; a bucket older than this has
	// refilled completely anyway.
	sourceTTL = 5 * time.Minute
)

// SourceLimiter throttles requests per source (remote address) with a
// token bucket each. Used on the webhook endpoint to absorb bursts
// without dropping legitimate Telegram retries.
type SourceLimiter struct {
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// NewSourceLimiter creates a limiter allowing perMinute requests per
// source with a burst of the same size.
func NewSourceLimiter(perMinute int) *SourceLimiter {
	return &SourceLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](maxTrackedSources, nil, sourceTTL),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

// Allow reports whether a request from the source may proceed.
func (l *SourceLimiter) Allow(source string) bool {
	lim, ok := l.limiters.Get(source)
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters.Add(source, lim)
	}
	return lim.Allow()
}
