package mdblog

import (
	"testing"
	"time"
)

func TestAttemptLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewAttemptLimiter(2, 200*time.Millisecond)
	ip := "203.0.113.10"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if !limiter.Allow(ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestAttemptLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewAttemptLimiter(1, 150*time.Millisecond)
	ip := "203.0.113.20"

	if !limiter.Allow(ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if limiter.Allow(ip) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !limiter.Allow(ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestAttemptLimiterIsPerIP(t *testing.T) {
	limiter := NewAttemptLimiter(1, time.Minute)

	if !limiter.Allow("198.51.100.1") {
		t.Fatalf("expected first IP to be allowed")
	}
	if !limiter.Allow("198.51.100.2") {
		t.Fatalf("expected second IP to be allowed independently")
	}
}

func TestAttemptLimiterCheckDoesNotRecord(t *testing.T) {
	limiter := NewAttemptLimiter(1, time.Minute)
	ip := "198.51.100.9"

	for range 3 {
		if !limiter.Check(ip) {
			t.Fatalf("Check alone should never exhaust the limit")
		}
	}
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected Check to fail after a recorded failure")
	}
}
