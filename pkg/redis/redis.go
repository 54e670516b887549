package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"barberbook/backend/config"
)

// Client wraps the Redis connection.
// Used for the token blacklist, per-staff clock locks and rate limiting.
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient connects to Redis and runs a ping health check.
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── token blacklist ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken adds a JWT ID to the blacklist with a TTL matching the
// token's remaining lifetime.
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to blacklist
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted reports whether a JWT ID is blacklisted.
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── clock lock ──

const clockLockPrefix = "clock:lock:"

// AcquireClockLock takes a short-lived exclusive lock for one
// (staffID, tenantID) pair. Returns false when another clock request
// holds the lock.
func (c *Client) AcquireClockLock(ctx context.Context, tenantID, staffID string, ttl time.Duration) (bool, error) {
	key := clockLockPrefix + tenantID + ":" + staffID
	return c.rdb.SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseClockLock releases the lock taken by AcquireClockLock.
func (c *Client) ReleaseClockLock(ctx context.Context, tenantID, staffID string) error {
	key := clockLockPrefix + tenantID + ":" + staffID
	return c.rdb.Del(ctx, key).Err()
}

// ── rate limiting ──

// CheckRateLimit counts requests for key within a fixed window.
// Returns false when the caller has exceeded limit.
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
