package ratelimiter

import (
	"sync"
	"time"
)

// Limiter decides whether a caller identified by key may proceed. When it
// may not, the second return value says how long until the window resets.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
	Close()
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindowRateLimiter counts requests per key within fixed wall-clock
// windows. Counts reset at window boundaries; a burst straddling two
// windows can briefly see up to twice the limit, which is acceptable for
// abuse protection on a small API.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	frame   time.Duration
	done    chan struct{}
}

func NewFixedWindowRateLimiter(limit int, frame time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		frame:   frame,
		done:    make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || !now.Before(w.resetAt) {
		rl.windows[key] = &window{count: 1, resetAt: now.Truncate(rl.frame).Add(rl.frame)}
		return true, 0
	}

	if w.count >= rl.limit {
		return false, time.Until(w.resetAt)
	}
	w.count++
	return true, 0
}

func (rl *FixedWindowRateLimiter) Close() {
	close(rl.done)
}

// evictLoop drops expired windows so idle keys do not accumulate.
func (rl *FixedWindowRateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.frame)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.mu.Lock()
			for key, w := range rl.windows {
				if now.After(w.resetAt) {
					delete(rl.windows, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}
