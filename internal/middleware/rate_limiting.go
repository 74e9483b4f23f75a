package middleware

import (
	"encoding/binary"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/justuscbyok/fitnesstracker/internal/telemetry/metrics"
	"github.com/justuscbyok/fitnesstracker/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

type RequestRateLimiter interface {
	Allow(key string, allowedPerMin int) bool
}

var _ RequestRateLimiter = (*RateLimiter)(nil)

// RateLimiter counts hits per key in fixed one minute windows. The
// counters live in freecache, so stale windows expire on their own.
type RateLimiter struct {
	cache *freecache.Cache
	mutex sync.Mutex // freecache has no atomic increment
}

func NewRateLimiter(cache *freecache.Cache) *RateLimiter {
	return &RateLimiter{
		cache: cache,
	}
}

func (rl *RateLimiter) Allow(key string, allowedPerMin int) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	window := time.Now().Unix() / 60
	windowKey := []byte(fmt.Sprintf("rate-limit||%s||%d", key, window))

	var count uint64
	if raw, err := rl.cache.Get(windowKey); err == nil && len(raw) == 8 {
		count = binary.BigEndian.Uint64(raw)
	}
	if count >= uint64(allowedPerMin) {
		return false
	}

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, count+1)
	// the entry only has to outlive its window
	if err := rl.cache.Set(windowKey, raw, 120); err != nil {
		log.Errorf("rate limiter, store count for %s: %s", key, err)
	}

	return true
}

// RateLimit throttles the wrapped routes per client IP. Preflight
// requests do not spend the budget.
func RateLimit(
	rateLimiter RequestRateLimiter,
	routerName string,
	allowedPerMin int,
	metricsManager *metrics.Manager,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := routerName
			if ip, err := pkg.ReadUserIP(r); err == nil {
				key = routerName + "||" + ip
			}

			if !rateLimiter.Allow(key, allowedPerMin) {
				if metricsManager != nil {
					metricsManager.CounterRateLimitedRequests.Inc()
				}
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
