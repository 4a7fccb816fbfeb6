// Package ratelimit guards the vote endpoint against runaway clients (a stuck
// kiosk, a bored student with curl). Fixed windows in Redis, or a noop.
package ratelimit

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MichelFaust/MCW-Food-Voting/internal/domain"
)

var ErrRateLimitExceeded = fmt.Errorf("vote limit reached")

// RedisRateLimiter counts submissions per client in fixed windows.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, clientIP, userAgent string) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		// Misconfiguration degrades to permissive.
		return nil
	}

	key := r.buildKey(clientIP, userAgent)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("ratelimit: increment: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return fmt.Errorf("ratelimit: set expiry: %w", err)
		}
	}

	if int(count) > r.limit {
		return ErrRateLimitExceeded
	}

	return nil
}

func (r *RedisRateLimiter) buildKey(clientIP, userAgent string) string {
	// Hashing keeps raw IP/UA strings out of Redis.
	base := fmt.Sprintf("%s|%s", clientIP, userAgent)
	hash := sha1.Sum([]byte(base))
	return fmt.Sprintf("%s:%s", r.keyPrefix, hex.EncodeToString(hash[:]))
}

var _ domain.RateGuard = (*RedisRateLimiter)(nil)
