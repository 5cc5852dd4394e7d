package web

import (
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	rl := newRateLimiter(3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d denied within burst", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("request over burst allowed")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other IP shares the bucket")
	}

	// 3 per minute refills one token every 20s.
	now = now.Add(20 * time.Second)
	if !rl.allow("10.0.0.1") {
		t.Error("token not refilled")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	now := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	rl := newRateLimiter(10)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(time.Minute)
	rl.allow("10.0.0.2")
	now = now.Add(2*time.Minute + time.Second)

	rl.sweep()
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("idle visitor kept")
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("recent visitor dropped")
	}
}
