package http

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bugtrackr/bug-tracker/internal/config"
	apperrors "github.com/bugtrackr/bug-tracker/pkg/util/errorutil"
)

// WindowCounter counts hits for a key within a fixed window.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimitMiddleware rejects clients that exceed cfg.Requests within cfg.Window().
// Counter failures are logged and the request is let through.
func RateLimitMiddleware(counter WindowCounter, cfg config.RateLimitConfig, logger *zap.Logger) fiber.Handler {
	limit := int64(cfg.Requests)
	window := cfg.Window()

	return func(c *fiber.Ctx) error {
		if counter == nil {
			return c.Next()
		}

		n, err := counter.IncrWindow(c.UserContext(), "ratelimit:"+c.IP(), window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("ip", c.IP()), zap.Error(err))
			return c.Next()
		}

		remaining := limit - n
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if n > limit {
			return apperrors.NewRateLimited()
		}
		return c.Next()
	}
}

// MemoryWindowCounter is an in-process WindowCounter for single-instance deployments.
type MemoryWindowCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]*windowBucket
	// sweepAt is the bucket count that triggers removal of expired buckets.
	sweepAt int
}

const defaultSweepThreshold = 1024

type windowBucket struct {
	count int64
	start time.Time
}

// NewMemoryWindowCounter returns an empty counter.
func NewMemoryWindowCounter() *MemoryWindowCounter {
	return &MemoryWindowCounter{
		now:     time.Now,
		buckets: make(map[string]*windowBucket),
		sweepAt: defaultSweepThreshold,
	}
}

func (m *MemoryWindowCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok || now.Sub(b.start) >= window {
		if !ok && len(m.buckets) >= m.sweepAt {
			m.sweep(now, window)
		}
		b = &windowBucket{start: now}
		m.buckets[key] = b
	}
	b.count++
	return b.count, nil
}

// sweep drops buckets whose window has elapsed. The threshold doubles while
// at least half the buckets are still live.
func (m *MemoryWindowCounter) sweep(now time.Time, window time.Duration) {
	for key, b := range m.buckets {
		if now.Sub(b.start) >= window {
			delete(m.buckets, key)
		}
	}
	if len(m.buckets) >= m.sweepAt/2 {
		m.sweepAt *= 2
	}
}

// Len reports how many client buckets are held.
func (m *MemoryWindowCounter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}
