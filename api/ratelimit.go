package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/models"
)

// Counter counts hits per key in fixed windows. Increment returns the count
// for the current window including this hit.
type Counter interface {
	Increment(ctx context.Context, key string) (int64, error)
}

type windowEntry struct {
	count int64
	reset time.Time
}

// FixedWindowCounter keeps counters in process memory. Counts are per
// instance; use RedisCounter when several instances share a limit.
type FixedWindowCounter struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]*windowEntry
	now     func() time.Time
}

// NewFixedWindowCounter ...
func NewFixedWindowCounter(window time.Duration) *FixedWindowCounter {
	return &FixedWindowCounter{
		window:  window,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Increment ...
func (c *FixedWindowCounter) Increment(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	e, ok := c.entries[key]
	if !ok || !now.Before(e.reset) {
		e = &windowEntry{reset: now.Add(c.window)}
		c.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// Sweep drops expired windows
func (c *FixedWindowCounter) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.reset) {
			delete(c.entries, k)
		}
	}
}

// StartSweeper sweeps every interval until ctx is done
func (c *FixedWindowCounter) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				c.Sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// RedisCounter shares counters between instances. Each window gets its own
// key which expires with the window.
type RedisCounter struct {
	client redis.Cmdable
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisCounter ...
func NewRedisCounter(client redis.Cmdable, window time.Duration) *RedisCounter {
	return &RedisCounter{client: client, window: window, prefix: "ratelimit:", now: time.Now}
}

// Increment ...
func (c *RedisCounter) Increment(ctx context.Context, key string) (int64, error) {
	slot := c.now().UnixNano() / int64(c.window)
	k := fmt.Sprintf("%s%s:%d", c.prefix, key, slot)
	n, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, k, c.window).Err(); err != nil {
			zap.S().Warnw("failed to set rate limit expiry", "key", k, "error", err)
		}
	}
	return n, nil
}

// RateLimit allows limit requests per caller per window for the named route.
// It must run after the auth middleware. Counter failures let the request
// through.
func RateLimit(counter Counter, name string, limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := r.RemoteAddr
			if id, ok := IdentityFromContext(r.Context()); ok {
				caller = id.UserID
			}
			n, err := counter.Increment(r.Context(), name+":"+caller)
			if err != nil {
				zap.S().Warnw("rate limit counter failed, allowing request", "route", name, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if n > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(models.ErrorResponse{
					Success: false,
					Error:   "rate limit exceeded, try again later",
					Code:    "RATE_LIMITED",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
