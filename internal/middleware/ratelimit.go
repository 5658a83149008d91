package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"flexidb/internal/domain"
)

// RateLimitConfig is a token bucket per caller.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleTTL       = 10 * time.Minute
)

type bucket struct {
	*rate.Limiter
	lastSeen time.Time
}

// buckets holds one limiter per caller key.
type buckets struct {
	cfg RateLimitConfig

	mu sync.Mutex
	m  map[string]*bucket
}

func (b *buckets) get(key string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()
	bk, ok := b.m[key]
	if !ok {
		bk = &bucket{Limiter: rate.NewLimiter(rate.Limit(b.cfg.RequestsPerSecond), b.cfg.Burst)}
		b.m[key] = bk
	}
	bk.lastSeen = now
	return bk.Limiter
}

func (b *buckets) sweep(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k, bk := range b.m {
		if now.Sub(bk.lastSeen) > bucketIdleTTL {
			delete(b.m, k)
		}
	}
}

func (b *buckets) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m)
}

// RateLimiter throttles callers with a token bucket each. Authenticated
// requests are keyed by principal, anonymous ones by remote IP, so it must
// run after Authenticate. Over-limit requests get 429 with Retry-After. Idle
// buckets are swept until ctx is done.
func RateLimiter(ctx context.Context, cfg RateLimitConfig) func(http.Handler) http.Handler {
	b := &buckets{cfg: cfg, m: map[string]*bucket{}}

	go func() {
		ticker := time.NewTicker(bucketSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				b.sweep(now)
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := b.get(callerKey(r), time.Now())

			res := limiter.Reserve()
			if !res.OK() {
				tooManyRequests(w, 0)
				return
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				tooManyRequests(w, int(delay.Seconds())+1)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
			next.ServeHTTP(w, r)
		})
	}
}

// callerKey is "principal:<name>" for authenticated requests and
// "ip:<addr>" otherwise. X-Forwarded-For is not trusted.
func callerKey(r *http.Request) string {
	if p, ok := domain.PrincipalFromContext(r.Context()); ok && p.Source != "anonymous" && p.Name != "" {
		return "principal:" + p.Name
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

func tooManyRequests(w http.ResponseWriter, retryAfter int) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	writeError(w, http.StatusTooManyRequests, "Rate limit exceeded.")
}
