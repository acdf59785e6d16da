package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key, created lazily.
type Limiter struct {
	mu    sync.RWMutex
	m     map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// New builds a limiter allowing perMinute events per key with the given burst.
func New(perMinute, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		m:     make(map[string]*rate.Limiter),
		limit: Every(perMinute, time.Minute),
		burst: burst,
	}
}

// Every converts n events per window into a rate.Limit. n <= 0 means unlimited.
func Every(n int, window time.Duration) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Every(window / time.Duration(n))
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.m[key]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.m[key]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.limit, l.burst)
	l.m[key] = lim
	return lim
}

// Allow consumes one token for key if available.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Wait blocks until a token for key is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(key).Wait(ctx)
}
