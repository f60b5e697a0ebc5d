package web

import (
	"testing"
	"time"
)

func TestRateLimiter_Take(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := &rateLimiter{
		buckets: make(map[string]*bucket),
		rate:    2,
		window:  time.Minute,
		now:     func() time.Time { return clock },
	}

	for i := range 2 {
		if ok, _ := rl.take("a"); !ok {
			t.Fatalf("take #%d denied, want allowed", i+1)
		}
	}

	ok, wait := rl.take("a")
	if ok {
		t.Fatal("third take allowed, want denied")
	}
	if wait != 30*time.Second {
		t.Errorf("retryAfter = %v, want %v", wait, 30*time.Second)
	}

	if ok, _ := rl.take("b"); !ok {
		t.Error("other client denied, want its own bucket")
	}

	clock = clock.Add(30 * time.Second)
	if ok, _ := rl.take("a"); !ok {
		t.Error("take after refill denied, want allowed")
	}
	if ok, _ := rl.take("a"); ok {
		t.Error("second take after one refill allowed, want denied")
	}
}
