package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockKeyPrefix    = "stock:"
	idempotencyKeyTTL = 24 * time.Hour
)

// Atomic compare-and-decrement. Returns 1 on success, 0 when the cached
// quantity is lower than requested, -1 when the item is not cached at all
// (callers fall back to the database guard).
var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return -1
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

// Restore is a no-op for uncached items so a rollback never materialises a
// key holding a bogus absolute quantity.
var incrementStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

if redis.call('EXISTS', key) == 0 then
	return 0
end

return redis.call('INCRBY', key, quantity)
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) DecrementStock(ctx context.Context, itemID string, quantity int) (bool, error) {
	key := stockKeyPrefix + itemID

	result, err := decrementStockScript.Run(ctx, r.client, []string{key}, quantity).Int()
	if err != nil {
		return false, err
	}

	// Uncached item: let the database decide. The transactional decrement
	// there is the final guard either way.
	if result == -1 {
		return true, nil
	}

	return result == 1, nil
}

func (r *RedisAdapter) IncrementStock(ctx context.Context, itemID string, quantity int) error {
	key := stockKeyPrefix + itemID
	return incrementStockScript.Run(ctx, r.client, []string{key}, quantity).Err()
}

func (r *RedisAdapter) GetStock(ctx context.Context, itemID string) (int, bool, error) {
	key := stockKeyPrefix + itemID
	val, err := r.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, itemID string, quantity int) error {
	key := stockKeyPrefix + itemID
	return r.client.Set(ctx, key, quantity, 0).Err()
}

func (r *RedisAdapter) DeleteStock(ctx context.Context, itemID string) error {
	key := stockKeyPrefix + itemID
	return r.client.Del(ctx, key).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
