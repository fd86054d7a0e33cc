package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle rate-limits login attempts per username.
type Throttle struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

// NewThrottle allows burst attempts at once and perMinute sustained. A
// non-positive perMinute disables throttling.
func NewThrottle(perMinute float64, burst int) *Throttle {
	r := rate.Inf
	if perMinute > 0 {
		r = rate.Every(time.Duration(float64(time.Minute) / perMinute))
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		m: make(map[string]*rate.Limiter),
		r: r,
		b: burst,
	}
}

func (t *Throttle) limiterFor(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lim, ok := t.m[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(t.r, t.b)
	t.m[key] = lim
	return lim
}

// Allow spends one attempt for key and reports whether it was available.
func (t *Throttle) Allow(key string) bool {
	return t.limiterFor(key).Allow()
}

// Reset forgets past attempts for key.
func (t *Throttle) Reset(key string) {
	t.mu.Lock()
	delete(t.m, key)
	t.mu.Unlock()
}
