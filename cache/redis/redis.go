// Package redis 基于 go-redis 的缓存驱动。
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BerniceZTT/crm_pipeline/cache"

	"github.com/redis/go-redis/v9"
)

func init() {
	cache.Register("redis", NewCache)
}

// Cache Redis缓存
type Cache struct {
	client redis.UniversalClient
}

var _ cache.Cache = (*Cache)(nil)

// NewCache 连接Redis并检查可用性
func NewCache(ctx context.Context, opts ...cache.Option) (cache.Cache, error) {
	o := cache.Apply(opts...)
	client := redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// NewWithClient 使用已有客户端
func NewWithClient(client redis.UniversalClient) *Cache {
	return &Cache{client: client}
}

// Get implements cache.Cache.
func (r *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set implements cache.Cache.
func (r *Cache) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, key, val, ttl).Err()
}

// Delete implements cache.Cache.
func (r *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Keys implements cache.Cache. 使用SCAN避免阻塞
func (r *Cache) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Close implements cache.Cache.
func (r *Cache) Close() error {
	return r.client.Close()
}
