package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"go-hrpayroll/internal/config"
	"go-hrpayroll/internal/metrics"
	"go-hrpayroll/internal/middleware"
	"go-hrpayroll/internal/shared/connection"
	"go-hrpayroll/internal/shared/database"
	"go-hrpayroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type infrastructure struct {
	gormDB  *gorm.DB
	sqlDB   *sql.DB
	rdb     *redis.Client
	metrics *metrics.Metrics
}

func connect(cfg *config.Config, logger *zap.Logger, withRedis bool) (*infrastructure, func(), error) {
	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}

	infra := &infrastructure{gormDB: gormDB, sqlDB: sqlDB}
	cleanup := func() { _ = sqlDB.Close() }

	if withRedis {
		rdb, err := connection.ConnectRedisWithRetry(cfg.Redis, cfg.Database.ConnectRetries, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		infra.rdb = rdb
		cleanup = func() {
			_ = rdb.Close()
			_ = sqlDB.Close()
		}
	}

	return infra, cleanup, nil
}

// BuildApp connects storage, migrates, seeds and returns the API router.
func BuildApp(cfg *config.Config, logger *zap.Logger) (*gin.Engine, func(), error) {
	infra, cleanup, err := connect(cfg, logger, true)
	if err != nil {
		return nil, nil, err
	}

	if err := database.RunMigrations(infra.sqlDB, logger); err != nil {
		cleanup()
		return nil, nil, err
	}
	infra.metrics = metrics.New()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.ContextLogger(logger.Named("http")),
		middleware.Metrics(infra.metrics),
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst),
	)

	router.GET("/metrics", gin.WrapH(infra.metrics.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := infra.sqlDB.PingContext(ctx); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	if err := registerModules(router, cfg, infra, logger); err != nil {
		cleanup()
		return nil, nil, err
	}

	return router, cleanup, nil
}
