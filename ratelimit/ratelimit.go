// Package ratelimit implements a fixed-window request counter keyed by
// client and action.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Result reports the outcome of one admission check. RetryAfter is only
// meaningful when Allowed is false and holds the time remaining in the
// current window.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

type window struct {
	count     int
	expiresAt time.Time
}

// Limiter counts events per (client, action) key in fixed windows. The
// first event of a window sets its expiry; later events never extend it,
// so a client that keeps hammering still gets a fresh window on schedule.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewLimiter creates a limiter and starts a background sweep that drops
// expired windows. Close stops the sweep.
func NewLimiter() *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go l.sweep(time.Minute)
	return l
}

// Allow records one event for the client/action pair and reports whether
// it stays within limit events per windowSize.
func (l *Limiter) Allow(clientID, action string, windowSize time.Duration, limit int) Result {
	key := fmt.Sprintf("%s:%s:%d", clientID, action, int(windowSize.Seconds()))
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !w.expiresAt.After(now) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(windowSize)}
		if limit < 1 {
			return Result{Allowed: false, RetryAfter: windowSize}
		}
		return Result{Allowed: true}
	}

	w.count++
	if w.count > limit {
		return Result{Allowed: false, RetryAfter: w.expiresAt.Sub(now)}
	}
	return Result{Allowed: true}
}

func (l *Limiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeExpired()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) removeExpired() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if !w.expiresAt.After(now) {
			delete(l.windows, key)
		}
	}
}

// Close stops the background sweep.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.done) })
}
