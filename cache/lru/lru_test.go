package lru

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/BerniceZTT/crm_pipeline/cache"

	"github.com/matryer/is"
)

func TestCacheExpiry(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	c, err := New(8)
	is.NoErr(err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	is.NoErr(c.Set(ctx, "a", "1", time.Minute))
	is.NoErr(c.Set(ctx, "b", "2", 0))

	v, ok, err := c.Get(ctx, "a")
	is.NoErr(err)
	is.True(ok)
	is.Equal(v, "1")

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "a")
	is.NoErr(err)
	is.True(!ok) // 到期即失效

	v, ok, _ = c.Get(ctx, "b")
	is.True(ok)
	is.Equal(v, "2")
}

func TestCacheKeysByPrefix(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()

	c, err := New(8)
	is.NoErr(err)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	is.NoErr(c.Set(ctx, "deal_summary:o1:30", "x", time.Hour))
	is.NoErr(c.Set(ctx, "deal_summary:o1:7", "x", time.Second))
	is.NoErr(c.Set(ctx, "deal_summary:o2:30", "x", time.Hour))
	is.NoErr(c.Set(ctx, "deal_funnel:o1", "x", time.Hour))

	keys, err := c.Keys(ctx, "deal_summary:o1:")
	is.NoErr(err)
	sort.Strings(keys)
	is.Equal(keys, []string{"deal_summary:o1:30", "deal_summary:o1:7"})

	now = now.Add(2 * time.Second)
	keys, err = c.Keys(ctx, "deal_summary:o1:")
	is.NoErr(err)
	is.Equal(keys, []string{"deal_summary:o1:30"})

	is.NoErr(c.Delete(ctx, "deal_summary:o1:30", "missing"))
	keys, _ = c.Keys(ctx, "deal_summary:o1:")
	is.Equal(len(keys), 0)
}

func TestRegisteredDriver(t *testing.T) {
	is := is.New(t)
	c, err := cache.New(context.Background(), "memory", cache.WithSize(2))
	is.NoErr(err)
	defer c.Close()

	ctx := context.Background()
	is.NoErr(c.Set(ctx, "a", "1", 0))
	is.NoErr(c.Set(ctx, "b", "2", 0))
	is.NoErr(c.Set(ctx, "c", "3", 0))

	// 容量为2，最早的键被淘汰
	_, ok, _ := c.Get(ctx, "a")
	is.True(!ok)
	_, ok, _ = c.Get(ctx, "c")
	is.True(ok)
}
