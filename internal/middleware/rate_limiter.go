package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

// RateLimiter is a per-IP fixed-window limiter. Expired entries are purged
// periodically while the context passed to NewRateLimiter is alive.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*rateEntry
	now     func() time.Time
}

const purgeInterval = 5 * time.Minute

func NewRateLimiter(ctx context.Context, limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*rateEntry),
		now:     time.Now,
	}
	go rl.purgeLoop(ctx)
	return rl
}

// Middleware rejects requests beyond the limit with 429 and a Retry-After
// header in seconds. A non-positive limit disables limiting.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 {
			c.Next()
			return
		}
		if retryAfter, ok := rl.allow(c.ClientIP()); !ok {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				apierror.WithCode("RATE_LIMITED", "Too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) (time.Duration, bool) {
	rl.mu.Lock()
	entry, exists := rl.entries[ip]
	if !exists {
		entry = &rateEntry{}
		rl.entries[ip] = entry
	}
	rl.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := rl.now()
	if now.After(entry.windowEnd) {
		entry.count = 0
		entry.windowEnd = now.Add(rl.window)
	}
	entry.count++
	if entry.count > rl.limit {
		return entry.windowEnd.Sub(now), false
	}
	return 0, true
}

func (rl *RateLimiter) purgeLoop(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.purge(); n > 0 {
				log.Debug().Int("entries_purged", n).Msg("rate limiter entries purged")
			}
		}
	}
}

func (rl *RateLimiter) purge() int {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	purged := 0
	for ip, entry := range rl.entries {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(rl.entries, ip)
			purged++
		}
		entry.mu.Unlock()
	}
	return purged
}
