package cache

import "context"

type contextKey struct{}

// WithContext 将缓存放入上下文
func WithContext(ctx context.Context, c Cache) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext 从上下文取出缓存
func FromContext(ctx context.Context) Cache {
	if c, ok := ctx.Value(contextKey{}).(Cache); ok {
		return c
	}
	return nil
}
