package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
)

type stubCache struct {
	closed bool
}

func (s *stubCache) Get(context.Context, string) (string, bool, error)        { return "", false, nil }
func (s *stubCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (s *stubCache) Delete(context.Context, ...string) error                  { return nil }
func (s *stubCache) Keys(context.Context, string) ([]string, error)           { return nil, nil }
func (s *stubCache) Close() error                                             { s.closed = true; return nil }

func TestManagerConnectsOnce(t *testing.T) {
	is := is.New(t)
	calls := 0
	m := NewManager(func(context.Context) (Cache, error) {
		calls++
		return &stubCache{}, nil
	})

	c1, err := m.Get(context.Background())
	is.NoErr(err)
	c2, err := m.Get(context.Background())
	is.NoErr(err)
	is.Equal(c1, c2)
	is.Equal(calls, 1)

	is.NoErr(m.Close())
	is.True(c1.(*stubCache).closed)

	_, err = m.Get(context.Background())
	is.NoErr(err)
	is.Equal(calls, 2) // 关闭后重新连接
}

func TestManagerRetriesAfterFailure(t *testing.T) {
	is := is.New(t)
	fail := true
	m := NewManager(func(context.Context) (Cache, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return &stubCache{}, nil
	})

	_, err := m.Get(context.Background())
	is.True(err != nil)

	fail = false
	c, err := m.Get(context.Background())
	is.NoErr(err)
	is.True(c != nil)
}

func TestManagerPrefersContext(t *testing.T) {
	is := is.New(t)
	own := &stubCache{}
	m := Static(own)

	override := &stubCache{}
	c, err := m.Get(WithContext(context.Background(), override))
	is.NoErr(err)
	is.Equal(c, Cache(override))

	c, err = m.Get(context.Background())
	is.NoErr(err)
	is.Equal(c, Cache(own))
}

func TestUnknownDriver(t *testing.T) {
	is := is.New(t)
	_, err := NewDriverManager("nope").Get(context.Background())
	is.True(errors.Is(err, ErrCacheNotFound))
}
