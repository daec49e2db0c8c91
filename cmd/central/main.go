package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/adapter/handler"
	"github.com/julianszw/inventory-management-system/internal/adapter/storage"
	"github.com/julianszw/inventory-management-system/internal/config"
	"github.com/julianszw/inventory-management-system/internal/core/service"
	"github.com/julianszw/inventory-management-system/internal/metrics"
	"github.com/julianszw/inventory-management-system/internal/port"
)

func main() {
	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	cfg := config.LoadCentral()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	var cache port.SnapshotCache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to ping redis", zap.Error(err))
		}
		cache = storage.NewRedisCache(rdb)
		logger.Info("connected to redis")
	}

	central := storage.NewCentralMySQL(db)
	if err := storage.SeedCentral(ctx, central); err != nil {
		logger.Fatal("failed to seed data", zap.Error(err))
	}

	collector := metrics.New()
	mergeService := service.NewMergeService(central, cache, logger)
	productService := service.NewProductService(central)

	centralHandler := handler.NewCentralHandler(mergeService, productService, collector)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: centralHandler.Routes(logger),
	}

	go func() {
		logger.Info("central node listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	if rdb != nil {
		rdb.Close()
	}
	db.Close()
	logger.Info("central node stopped")
}
