package cache

import (
	"context"
	"sync"
)

// Constructor 缓存驱动构造函数
type Constructor func(ctx context.Context, opts ...Option) (Cache, error)

var (
	registry = map[string]Constructor{}
	mtx      sync.RWMutex
)

// Register 注册缓存驱动
func Register(name string, fn Constructor) {
	mtx.Lock()
	defer mtx.Unlock()

	registry[name] = fn
}

// New 按驱动名创建缓存
func New(ctx context.Context, name string, opts ...Option) (Cache, error) {
	mtx.RLock()
	fn, ok := registry[name]
	mtx.RUnlock()

	if !ok {
		return nil, ErrCacheNotFound
	}

	return fn(ctx, opts...)
}
