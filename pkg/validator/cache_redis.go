package validator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a ResultCache backed by Redis, for deployments that share
// a result cache across multiple validator processes.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisCache constructs a RedisCache against addr (e.g. "localhost:6379").
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ctx:    context.Background(),
	}
}

func (c *RedisCache) Get(key CacheKey) (Result, bool) {
	raw, err := c.client.Get(c.ctx, key.String()).Bytes()
	if err != nil {
		return Result{}, false
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (c *RedisCache) Set(key CacheKey, result Result, ttl time.Duration) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	c.client.Set(c.ctx, key.String(), raw, ttl)
}
