package handler

import (
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	l := NewRateLimiter(0.001, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d denied within burst", i)
		}
	}
	if l.Allow("a") {
		t.Error("request beyond burst allowed")
	}
	if !l.Allow("b") {
		t.Error("keys must be limited independently")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	var nilLimiter *RateLimiter
	if !nilLimiter.Allow("a") {
		t.Error("nil limiter must allow")
	}
	l := NewRateLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !l.Allow("a") {
			t.Fatal("zero rate must disable limiting")
		}
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	l := NewRateLimiter(1, 1)
	l.Allow("old")
	l.Allow("fresh")

	l.mu.Lock()
	l.entries["old"].lastSeen = time.Now().Add(-2 * l.idleTTL)
	l.mu.Unlock()

	l.Cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries["old"]; ok {
		t.Error("idle key not cleaned up")
	}
	if _, ok := l.entries["fresh"]; !ok {
		t.Error("fresh key removed")
	}
}
