package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/utils/cache"
	"github.com/sahilchouksey/skill-training-api/utils/response"
	"go.uber.org/zap"
)

const attemptWindow = 15 * time.Minute

// BruteForceProtection locks out client IPs after repeated failed logins
type BruteForceProtection struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(c cache.Cache, logger *zap.Logger) *BruteForceProtection {
	return &BruteForceProtection{
		cache:  c,
		logger: logger,
	}
}

func attemptKey(ip string) string { return fmt.Sprintf("brute_force:attempts:%s", ip) }
func lockKey(ip string) string    { return fmt.Sprintf("brute_force:lock:%s", ip) }

// lockDuration returns the progressive lockout for an attempt count, or 0
func lockDuration(attempts int64) time.Duration {
	switch {
	case attempts >= 25:
		return 24 * time.Hour
	case attempts >= 10:
		return time.Hour
	case attempts >= 5:
		return 2 * time.Minute
	default:
		return 0
	}
}

// CheckLock rejects requests from a locked IP with 429
func (b *BruteForceProtection) CheckLock() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := lockKey(c.IP())

		locked, err := b.cache.Exists(c.UserContext(), key)
		if err != nil {
			// Cache outage must not block logins
			b.logger.Warn("brute force lock check failed", zap.Error(err))
			return c.Next()
		}
		if !locked {
			return c.Next()
		}

		ttl, _ := b.cache.TTL(c.UserContext(), key)
		retryAfter := int(ttl.Seconds())
		if retryAfter <= 0 {
			retryAfter = 60
		}

		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
	}
}

// RecordFailure counts a failed login and applies a lockout when due
func (b *BruteForceProtection) RecordFailure(ctx context.Context, ip string) {
	attempts, err := b.cache.Increment(ctx, attemptKey(ip))
	if err != nil {
		b.logger.Warn("failed to record login attempt", zap.String("ip", ip), zap.Error(err))
		return
	}
	if attempts == 1 {
		_ = b.cache.Expire(ctx, attemptKey(ip), attemptWindow)
	}

	if d := lockDuration(attempts); d > 0 {
		if err := b.cache.Set(ctx, lockKey(ip), "locked", d); err != nil {
			b.logger.Warn("failed to lock ip", zap.String("ip", ip), zap.Error(err))
			return
		}
		b.logger.Info("ip locked after failed logins",
			zap.String("ip", ip), zap.Int64("attempts", attempts), zap.Duration("lock", d))
	}
}

// RecordSuccess clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccess(ctx context.Context, ip string) {
	_ = b.cache.Delete(ctx, attemptKey(ip), lockKey(ip))
}

// AttemptCount returns the current failed attempt count for an IP
func (b *BruteForceProtection) AttemptCount(ctx context.Context, ip string) (int64, error) {
	val, err := b.cache.Get(ctx, attemptKey(ip))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(val, 10, 64)
}
