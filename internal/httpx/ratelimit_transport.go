package httpx

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type hostLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter paces outgoing requests, one token bucket per host.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*hostLimiter
	rate     rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*hostLimiter),
		rate:     rate.Limit(rps),
		burst:    max(burst, 1),
		idle:     5 * time.Minute,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(host string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, l := range rl.limiters {
		if key != host && now.Sub(l.lastSeen) > rl.idle {
			delete(rl.limiters, key)
		}
	}

	l, ok := rl.limiters[host]
	if !ok {
		l = &hostLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[host] = l
	}
	l.lastSeen = now
	return l.limiter
}

// Transport waits for a token before every request. A request whose context
// ends while waiting fails with the context's error.
func (rl *RateLimiter) Transport(next http.RoundTripper) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if err := rl.getLimiter(r.URL.Host).Wait(r.Context()); err != nil {
			return nil, err
		}
		return next.RoundTrip(r)
	})
}
