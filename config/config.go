package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"

	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

// Config 应用配置
type Config struct {
	Port    int    `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI    string `env:"MONGO_URI" envDefault:"mongodb://127.0.0.1:27017"`
	MongoDB     string `env:"MONGO_DB" envDefault:"crm"`

	CacheDriver   string `env:"CACHE_DRIVER" envDefault:"redis"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	CacheSize     int    `env:"CACHE_SIZE" envDefault:"4096"`

	JWTKey          string        `env:"JWT_KEY"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"192h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

// Debug 是否为调试模式
func (c *Config) Debug() bool {
	return c.GinMode == "debug"
}

// LoadConfig 从环境变量加载配置
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverMongo, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.CacheDriver {
	case CacheDriverRedis, CacheDriverMemory:
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.CacheDriver)
	}
	if c.JWTKey == "" {
		if !c.Debug() {
			return fmt.Errorf("JWT_KEY is required outside debug mode")
		}
		// 仅用于本地调试
		c.JWTKey = "dev-secret-key"
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	return nil
}
