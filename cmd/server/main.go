package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"anoa.com/codediary/internal/bootstrap"
	"anoa.com/codediary/internal/config"
	searchService "anoa.com/codediary/internal/modules/search/service"
	"anoa.com/codediary/internal/server"
	"anoa.com/codediary/pkg/database"
	"anoa.com/codediary/pkg/logger"
	"anoa.com/codediary/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.L().Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(database.Config{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Path:     cfg.DBPath,
		LogSQL:   cfg.LogLevel == "debug",
	})
	if err != nil {
		logger.L().Fatal("database connection failed", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		logger.L().Fatal("migration failed", zap.Error(err))
	}

	deps := server.Deps{DB: db}

	if cfg.RedisURL != "" {
		deps.Redis = connectRedis(cfg.RedisURL)
	} else {
		logger.Info("REDIS_URL not set, rate limiting and live hints disabled")
	}

	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		deps.Search = searchService.NewMeiliSearchService(host, cfg.MeiliMasterKey)
	} else {
		logger.Info("MEILISEARCH_HOST not set, search disabled")
	}

	if cfg.CloudinaryURL != "" {
		imageStorage, err := storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryUploadFolder)
		if err != nil {
			logger.L().Fatal("failed to initialize cloudinary storage", zap.Error(err))
		}
		deps.ImageStorage = imageStorage
	} else {
		logger.Info("CLOUDINARY_URL not set, avatar uploads disabled")
	}

	srv, err := server.NewServer(cfg, deps)
	if err != nil {
		logger.L().Fatal("failed to build server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.L().Fatal("server exited with error", zap.Error(err))
	}

	if deps.Redis != nil {
		_ = deps.Redis.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("server stopped")
}

func connectRedis(rawURL string) *redis.Client {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		logger.L().Fatal("invalid REDIS_URL", zap.Error(err))
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, continuing without it", zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("connected to redis", zap.String("addr", opt.Addr))
	return client
}
