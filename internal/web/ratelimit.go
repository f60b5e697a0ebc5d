package web

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	mw "github.com/JonMunkholm/gridtable/internal/web/middleware"
)

// rateLimiter is a per-client token bucket. Each client may burst up to
// rate requests and regains rate tokens per window, continuously.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	window  time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// newRateLimiter starts a limiter whose idle-bucket sweeper is stopped by
// Shutdown.
func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(rate),
		window:  window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	s.limiters = append(s.limiters, rl)
	go rl.sweep()
	return rl
}

// sweep drops buckets that have refilled completely, since they are
// indistinguishable from new ones.
func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, b := range rl.buckets {
				if now.Sub(b.seen) >= rl.window {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// take spends one token for key. When none is left it reports how long
// until the next one.
func (rl *rateLimiter) take(key string) (ok bool, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{tokens: rl.rate, seen: now}
		rl.buckets[key] = b
	}

	perToken := rl.window / time.Duration(max(rl.rate, 1))
	b.tokens = min(rl.rate, b.tokens+float64(now.Sub(b.seen))/float64(perToken))
	b.seen = now

	if b.tokens < 1 {
		return false, time.Duration((1 - b.tokens) * float64(perToken))
	}
	b.tokens--
	return true, 0
}

// middleware limits by client address, as resolved by TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok, wait := rl.take(mw.ClientIP(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			respondError(w, r, errRateLimited)
			return
		}
		next.ServeHTTP(w, r)
	})
}
