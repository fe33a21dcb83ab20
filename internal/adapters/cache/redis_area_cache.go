package cache

import (
	"aed-location-service/internal/platform/obs"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultAreaNamesKey = "aed:area_names"

// RedisAreaCache keeps the distinct area list in Redis so that page renders
// across requests and processes can skip the DISTINCT ON query. The importer
// invalidates it after every successful import.
type RedisAreaCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisAreaCache(client *redis.Client, ttl time.Duration) *RedisAreaCache {
	return &RedisAreaCache{client: client, key: defaultAreaNamesKey, ttl: ttl}
}

// Fetch the cached area list; ok is false on a miss.
func (c *RedisAreaCache) GetAreaNames(ctx context.Context) (_ []string, _ bool, err error) {
	defer obs.Time(ctx, "area.cache.Get")(&err)

	if c.client == nil {
		return nil, false, errors.New("area cache: redis client is nil")
	}

	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get area cache: %w", err)
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, false, fmt.Errorf("get area cache: decode: %w", err)
	}

	return names, true, nil
}

// Store the area list. A zero ttl keeps it until invalidated.
func (c *RedisAreaCache) PutAreaNames(ctx context.Context, names []string) error {
	if c.client == nil {
		return errors.New("area cache: redis client is nil")
	}
	if names == nil {
		names = []string{}
	}

	payload, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("put area cache: encode: %w", err)
	}

	if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("put area cache: %w", err)
	}

	return nil
}

func (c *RedisAreaCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return errors.New("area cache: redis client is nil")
	}

	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("invalidate area cache: %w", err)
	}

	return nil
}
