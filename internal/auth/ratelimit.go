package auth

import (
	"sync"
	"time"
)

// Limiter tracks failed login attempts per client address within a sliding
// window. Addresses with too many recent attempts are locked out until
// attempts age out of the window.
type Limiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewLimiter creates a Limiter allowing max attempts per address per window.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// Allow reports whether the address may attempt a login. Expired entries are
// swept on every check so the map does not grow with stale addresses.
func (l *Limiter) Allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep()
	return len(l.attempts[addr]) < l.max
}

// Record notes a failed login attempt for the address.
func (l *Limiter) Record(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts[addr] = append(l.attempts[addr], l.now())
}

// Reset clears the address after a successful login.
func (l *Limiter) Reset(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.attempts, addr)
}

func (l *Limiter) sweep() {
	cutoff := l.now().Add(-l.window)

	for addr, times := range l.attempts {
		kept := times[:0]
		for _, t := range times {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(l.attempts, addr)
			continue
		}
		l.attempts[addr] = kept
	}
}
