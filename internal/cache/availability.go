package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zemo-rentals/service-reservation/internal/config"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
)

// NewRedisClient creates a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// AvailabilityResult is the cached answer for one (vehicle, range) query.
type AvailabilityResult struct {
	Available  bool        `json:"available"`
	BlockerIDs []uuid.UUID `json:"blocker_ids,omitempty"`
	ComputedAt time.Time   `json:"computed_at"`
}

// AvailabilityCache caches oracle reads with a short TTL. It is advisory
// only: the coordinator never trusts it and always re-checks inside the
// write transaction, so a stale hit costs a wasted request, never a
// double booking.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewAvailabilityCache creates the cache with the configured TTL.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl, logger: logger}
}

func availabilityKey(vehicleID uuid.UUID, dates reservation.DateRange) string {
	return fmt.Sprintf("availability:%s:%s:%s",
		vehicleID,
		dates.Start.Format("2006-01-02"),
		dates.End.Format("2006-01-02"),
	)
}

// Get returns the cached result, or nil on a miss. Cache errors are
// logged and reported as misses.
func (c *AvailabilityCache) Get(ctx context.Context, vehicleID uuid.UUID, dates reservation.DateRange) *AvailabilityResult {
	val, err := c.client.Get(ctx, availabilityKey(vehicleID, dates)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.logger.Warn("availability cache read failed", zap.Error(err))
		return nil
	}

	var result AvailabilityResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		c.logger.Warn("availability cache entry corrupt", zap.Error(err))
		return nil
	}
	return &result
}

// Set stores the result under the configured TTL. Failures are logged
// and swallowed.
func (c *AvailabilityCache) Set(ctx context.Context, vehicleID uuid.UUID, dates reservation.DateRange, result AvailabilityResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("failed to marshal availability result", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, availabilityKey(vehicleID, dates), data, c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", zap.Error(err))
	}
}

// Invalidate drops all cached entries for a vehicle. Called after any
// write that changes the vehicle's booking set.
func (c *AvailabilityCache) Invalidate(ctx context.Context, vehicleID uuid.UUID) {
	pattern := fmt.Sprintf("availability:%s:*", vehicleID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("availability cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("availability cache invalidation failed", zap.Error(err))
	}
}
