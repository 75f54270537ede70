package cache

import (
	"context"
	"sync"
)

// Manager 持有进程内唯一的缓存连接，首次使用时建立，之后复用
type Manager struct {
	mu      sync.Mutex
	cache   Cache
	connect func(ctx context.Context) (Cache, error)
}

// NewManager 使用连接函数创建Manager
func NewManager(connect func(ctx context.Context) (Cache, error)) *Manager {
	return &Manager{connect: connect}
}

// NewDriverManager 按驱动名延迟创建缓存
func NewDriverManager(name string, opts ...Option) *Manager {
	return NewManager(func(ctx context.Context) (Cache, error) {
		return New(ctx, name, opts...)
	})
}

// Static 包装一个已创建的缓存
func Static(c Cache) *Manager {
	return &Manager{cache: c}
}

// Get 优先使用上下文中的缓存，其次返回已有连接，没有则建立；建立失败时下次调用会重试
func (m *Manager) Get(ctx context.Context) (Cache, error) {
	if c := FromContext(ctx); c != nil {
		return c, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cache != nil {
		return m.cache, nil
	}
	c, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	m.cache = c
	return c, nil
}

// Close 关闭已建立的连接
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cache == nil {
		return nil
	}
	err := m.cache.Close()
	m.cache = nil
	return err
}
