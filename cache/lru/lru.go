// Package lru 进程内缓存驱动，按条目记录过期时间。
package lru

import (
	"context"
	"strings"
	"time"

	"github.com/BerniceZTT/crm_pipeline/cache"

	lru "github.com/hashicorp/golang-lru/v2"
)

func init() {
	cache.Register("memory", newCache)
}

const defaultSize = 1024

type entry struct {
	val       string
	expiresAt time.Time
}

// Cache LRU内存缓存
type Cache struct {
	cache *lru.Cache[string, entry]
	now   func() time.Time
}

var _ cache.Cache = (*Cache)(nil)

func newCache(_ context.Context, opts ...cache.Option) (cache.Cache, error) {
	return New(cache.Apply(opts...).Size)
}

// New 创建指定容量的内存缓存
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = defaultSize
	}
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{cache: c, now: time.Now}, nil
}

// SetClock 替换时钟，测试使用
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}

func (c *Cache) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

// Get implements cache.Cache.
func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	e, ok := c.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	if c.expired(e) {
		c.cache.Remove(key)
		return "", false, nil
	}
	return e.val, true, nil
}

// Set implements cache.Cache.
func (c *Cache) Set(_ context.Context, key, val string, ttl time.Duration) error {
	e := entry{val: val}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.cache.Add(key, e)
	return nil
}

// Delete implements cache.Cache.
func (c *Cache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.cache.Remove(k)
	}
	return nil
}

// Keys implements cache.Cache.
func (c *Cache) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for _, k := range c.cache.Keys() {
		e, ok := c.cache.Peek(k)
		if !ok || c.expired(e) {
			continue
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Close implements cache.Cache.
func (c *Cache) Close() error {
	c.cache.Purge()
	return nil
}
