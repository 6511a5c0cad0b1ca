// Package middleware provides the gin middleware for the tutor API:
// CORS and per-client rate limiting.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Counter increments a fixed-window counter and returns the new value.
// The ttl bounds how long the key may live; implementations may expire it
// earlier once the window rolls over.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// ParseRate parses a rate spec such as "50/hour",
// "10/minute", or "1000/day" into a count and window.
func ParseRate(spec string) (int, time.Duration, error) {
	parts := strings.SplitN(strings.TrimSpace(spec), "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid rate spec %q, want count/period", spec)
	}

	count, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || count <= 0 {
		return 0, 0, fmt.Errorf("invalid rate count in %q", spec)
	}

	var window time.Duration
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "second":
		window = time.Second
	case "minute":
		window = time.Minute
	case "hour":
		window = time.Hour
	case "day":
		window = 24 * time.Hour
	default:
		return 0, 0, fmt.Errorf("invalid rate period in %q", spec)
	}

	return count, window, nil
}

// RateLimit returns a middleware enforcing limit requests per window per
// client IP using fixed-window counting. Counter failures fail open — an
// unreachable redis must not take the API down with it.
func RateLimit(counter Counter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), bucket)

		count, err := counter.Incr(c.Request.Context(), key, window)
		if err == nil && count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"request_id": uuid.NewString(),
			})
			return
		}

		c.Next()
	}
}

// MemoryCounter is the in-process Counter used when no redis address is
// configured. Suitable for a single replica only.
type MemoryCounter struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
}

type memoryBucket struct {
	count   int64
	expires time.Time
}

// NewMemoryCounter creates an empty MemoryCounter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{buckets: make(map[string]*memoryBucket)}
}

func (m *MemoryCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Drop rolled-over buckets opportunistically so the map stays small.
	for k, b := range m.buckets {
		if now.After(b.expires) {
			delete(m.buckets, k)
		}
	}

	b, ok := m.buckets[key]
	if !ok {
		b = &memoryBucket{expires: now.Add(ttl)}
		m.buckets[key] = b
	}
	b.count++
	return b.count, nil
}

// RedisCounter shares fixed-window counters across replicas via INCR with
// a TTL set on first increment.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter creates a RedisCounter over the given client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
