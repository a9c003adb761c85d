package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window per-key counter. State is in-process; with
// multiple replicas each replica enforces its own window, which is
// acceptable for abuse protection on the public endpoints.
type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*rateBucket
}

type rateBucket struct {
	count       int
	windowStart time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*rateBucket),
	}
}

func (l *rateLimiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	bucket, ok := l.buckets[key]
	if !ok || now.Sub(bucket.windowStart) >= l.window {
		l.prune(now)
		l.buckets[key] = &rateBucket{count: 1, windowStart: now}
		return true
	}

	if bucket.count >= l.limit {
		return false
	}
	bucket.count++
	return true
}

// prune drops expired buckets. Called with the lock held.
func (l *rateLimiter) prune(now time.Time) {
	for key, bucket := range l.buckets {
		if now.Sub(bucket.windowStart) >= l.window {
			delete(l.buckets, key)
		}
	}
}
