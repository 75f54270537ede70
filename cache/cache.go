// Package cache 提供分析结果缓存的抽象及驱动注册。
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheNotFound 未注册的缓存驱动
var ErrCacheNotFound = errors.New("cache driver not found")

// Cache 字符串键值缓存
type Cache interface {
	// Get 返回值及是否命中
	Get(ctx context.Context, key string) (string, bool, error)
	// Set 写入并设置过期时间，ttl<=0 表示不过期
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Keys 按前缀枚举键
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Options 创建缓存的参数
type Options struct {
	Addr     string
	Password string
	DB       int
	Size     int
}

// Option 缓存参数选项
type Option func(*Options)

// WithAddr 设置服务地址
func WithAddr(addr string) Option {
	return func(o *Options) { o.Addr = addr }
}

// WithPassword 设置密码
func WithPassword(password string) Option {
	return func(o *Options) { o.Password = password }
}

// WithDB 设置库编号
func WithDB(db int) Option {
	return func(o *Options) { o.DB = db }
}

// WithSize 设置内存缓存容量
func WithSize(size int) Option {
	return func(o *Options) { o.Size = size }
}

// Apply 合并选项
func Apply(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
