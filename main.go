package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerniceZTT/crm_pipeline/cache"
	_ "github.com/BerniceZTT/crm_pipeline/cache/lru"
	_ "github.com/BerniceZTT/crm_pipeline/cache/redis"
	"github.com/BerniceZTT/crm_pipeline/config"
	"github.com/BerniceZTT/crm_pipeline/repository"
	"github.com/BerniceZTT/crm_pipeline/repository/memstore"
	"github.com/BerniceZTT/crm_pipeline/server"
	"github.com/BerniceZTT/crm_pipeline/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.InitLogger(false)
		utils.Logger.Fatal().Err(err).Msg("加载配置失败")
	}

	// 初始化日志
	utils.InitLogger(cfg.Debug())

	// 设置Gin模式
	if cfg.Debug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// 初始化存储
	var stores server.Stores
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		utils.Logger.Warn().Msg("使用内存存储，重启后数据丢失")
		stores = server.MemoryStores(memstore.New())
	default:
		client, db, err := repository.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			utils.Logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer repository.CloseMongoDB(context.Background(), client)

		mongoStore := repository.NewMongo(client, db)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			utils.Logger.Error().Err(err).Msg("初始化数据库索引失败")
		}
		stores = server.MongoStores(mongoStore)
	}

	// 缓存在首次使用时连接，连接失败时分析接口直接查询数据库
	caches := cache.NewDriverManager(cfg.CacheDriver,
		cache.WithAddr(cfg.RedisAddr),
		cache.WithPassword(cfg.RedisPassword),
		cache.WithDB(cfg.RedisDB),
		cache.WithSize(cfg.CacheSize),
	)
	defer func() {
		if err := caches.Close(); err != nil {
			utils.Logger.Error().Err(err).Msg("关闭缓存失败")
		}
	}()

	tokens := server.NewTokenManager(cfg)
	services := server.NewServices(stores, caches, tokens)
	router := server.New(cfg, stores, services, tokens)

	// 设置HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 启动服务器
	go func() {
		utils.Logger.Info().Msgf("服务器启动，监听端口: %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal().Err(err).Msg("启动服务器失败")
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.Logger.Info().Msg("正在关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Error().Err(err).Msg("服务器关闭异常")
	}

	utils.Logger.Info().Msg("服务器已优雅关闭")
}
