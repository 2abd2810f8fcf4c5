package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyStockCount = "stock:available:%s"

// StockCache fronts the available-count query for the catalog badge. Counts
// are eventually consistent by contract, so a short TTL is fine; a miss or a
// redis failure just falls through to the store.
type StockCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr string, ttl time.Duration) *StockCache {
	return &StockCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
	}
}

func (c *StockCache) Get(ctx context.Context, productID uuid.UUID) (int, bool) {
	val, err := c.rdb.Get(ctx, fmt.Sprintf(keyStockCount, productID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *StockCache) Set(ctx context.Context, productID uuid.UUID, count int) {
	_ = c.rdb.Set(ctx, fmt.Sprintf(keyStockCount, productID), count, c.ttl).Err()
}

// Invalidate drops the cached badge after a mutation so the next read
// repopulates it from the store.
func (c *StockCache) Invalidate(ctx context.Context, productID uuid.UUID) {
	_ = c.rdb.Del(ctx, fmt.Sprintf(keyStockCount, productID)).Err()
}

func (c *StockCache) Close() error {
	return c.rdb.Close()
}
