package config

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestLoadConfigDefaults(t *testing.T) {
	is := is.New(t)
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("JWT_KEY", "")

	cfg, err := LoadConfig()
	is.NoErr(err)
	is.Equal(cfg.Port, 8080)
	is.Equal(cfg.StoreDriver, StoreDriverMongo)
	is.Equal(cfg.CacheDriver, CacheDriverRedis)
	is.Equal(cfg.AccessTokenTTL, 192*time.Hour)
	is.Equal(cfg.RefreshTokenTTL, 168*time.Hour)
	is.True(cfg.JWTKey != "") // 调试模式下使用开发密钥
	is.Equal(cfg.AllowedOrigins, []string{"http://localhost:3000", "http://localhost:5173"})
}

func TestLoadConfigFromEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("GIN_MODE", "release")
	t.Setenv("JWT_KEY", "prod-key")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CACHE_DRIVER", "memory")
	t.Setenv("CACHE_SIZE", "16")
	t.Setenv("ACCESS_TOKEN_TTL", "30m")

	cfg, err := LoadConfig()
	is.NoErr(err)
	is.True(!cfg.Debug())
	is.Equal(cfg.JWTKey, "prod-key")
	is.Equal(cfg.StoreDriver, StoreDriverMemory)
	is.Equal(cfg.CacheSize, 16)
	is.Equal(cfg.AccessTokenTTL, 30*time.Minute)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"release without key", Config{GinMode: "release", StoreDriver: "mongo", CacheDriver: "redis", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, false},
		{"unknown store", Config{GinMode: "debug", StoreDriver: "postgres", CacheDriver: "redis", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, false},
		{"unknown cache", Config{GinMode: "debug", StoreDriver: "mongo", CacheDriver: "memcached", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, false},
		{"zero ttl", Config{GinMode: "debug", JWTKey: "k", StoreDriver: "mongo", CacheDriver: "redis"}, false},
		{"ok", Config{GinMode: "release", JWTKey: "k", StoreDriver: "memory", CacheDriver: "memory", AccessTokenTTL: time.Hour, RefreshTokenTTL: time.Hour}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			err := tt.cfg.Validate()
			is.Equal(err == nil, tt.ok)
		})
	}
}
