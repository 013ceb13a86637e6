package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradezone/marketplace/internal/infrastructure/monitoring"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

// Cache backs two concerns: the short-lived advertised-stock cache used by
// the pre-checkout quantity guard, and the sweeper's best-effort lease lock.
type Cache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewCache(conn *Connection, log *logger.Logger) *Cache {
	client := monitoring.InstrumentRedisClient(conn.GetClient())

	return &Cache{
		client: client,
		logger: log,
	}
}

func stockKey(productID string) string {
	return fmt.Sprintf("product:%s:stock", productID)
}

func (c *Cache) GetProductStock(ctx context.Context, productID string) (int, bool, error) {
	result, err := c.client.Get(ctx, stockKey(productID)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}

	stock, err := strconv.Atoi(result)
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}

func (c *Cache) SetProductStock(ctx context.Context, productID string, stock int, expiration time.Duration) error {
	return c.client.Set(ctx, stockKey(productID), stock, expiration).Err()
}

func (c *Cache) InvalidateProductStock(ctx context.Context, productID string) error {
	return c.client.Del(ctx, stockKey(productID)).Err()
}

func (c *Cache) AcquireLock(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	result, err := c.client.SetNX(ctx, lockKey, "1", expiration).Result()
	if err != nil {
		monitoring.RedisLockFailureTotal.WithLabelValues(key, "redis_error").Inc()
		return false, err
	}
	if result {
		monitoring.RedisLockSuccessTotal.WithLabelValues(key).Inc()
	} else {
		monitoring.RedisLockFailureTotal.WithLabelValues(key, "already_locked").Inc()
	}
	return result, nil
}

func (c *Cache) ReleaseLock(ctx context.Context, key string) error {
	lockKey := fmt.Sprintf("lock:%s", key)
	return c.client.Del(ctx, lockKey).Err()
}
