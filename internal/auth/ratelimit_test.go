package auth

import (
	"testing"
	"time"
)

func TestLimiterBlocksAfterMaxAttempts(t *testing.T) {
	limiter := NewLimiter(3, 15*time.Minute)

	for i := range 3 {
		if !limiter.Allow("10.0.0.1") {
			t.Fatalf("attempt %d blocked early", i+1)
		}
		limiter.Record("10.0.0.1")
	}

	if limiter.Allow("10.0.0.1") {
		t.Error("fourth attempt allowed, want blocked")
	}

	// Other addresses are unaffected.
	if !limiter.Allow("10.0.0.2") {
		t.Error("unrelated address blocked")
	}
}

func TestLimiterWindowExpiry(t *testing.T) {
	now := time.Now()
	limiter := NewLimiter(2, 15*time.Minute)
	limiter.now = func() time.Time { return now }

	limiter.Record("10.0.0.1")
	limiter.Record("10.0.0.1")
	if limiter.Allow("10.0.0.1") {
		t.Fatal("expected address to be blocked")
	}

	// Advance past the window; stale attempts are swept on the next check.
	now = now.Add(16 * time.Minute)
	if !limiter.Allow("10.0.0.1") {
		t.Error("address still blocked after window expiry")
	}

	if len(limiter.attempts) != 0 {
		t.Errorf("stale entries remain: %d", len(limiter.attempts))
	}
}

func TestLimiterReset(t *testing.T) {
	limiter := NewLimiter(1, 15*time.Minute)

	limiter.Record("10.0.0.1")
	if limiter.Allow("10.0.0.1") {
		t.Fatal("expected address to be blocked")
	}

	limiter.Reset("10.0.0.1")
	if !limiter.Allow("10.0.0.1") {
		t.Error("address still blocked after reset")
	}
}
