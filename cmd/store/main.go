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
	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/adapter/handler"
	"github.com/julianszw/inventory-management-system/internal/adapter/storage"
	"github.com/julianszw/inventory-management-system/internal/adapter/syncclient"
	"github.com/julianszw/inventory-management-system/internal/config"
	"github.com/julianszw/inventory-management-system/internal/core/service"
	"github.com/julianszw/inventory-management-system/internal/metrics"
)

func main() {
	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	cfg := config.LoadStore()

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

	store := storage.NewStoreMySQL(db)
	if err := storage.SeedStore(ctx, store, store); err != nil {
		logger.Fatal("failed to seed data", zap.Error(err))
	}

	collector := metrics.New()
	stockService := service.NewStockService(store, store, logger)
	productService := service.NewProductService(store)
	central := syncclient.NewCentralClient(cfg.CentralBaseURL, cfg.SyncClientTimeout)
	syncService := service.NewSyncService(store, store, central, cfg.SyncMaxRetries, cfg.SyncInitialBackoff, logger)

	var scheduler *service.SyncScheduler
	if cfg.SyncEnabled {
		scheduler = service.NewSyncScheduler(syncService, cfg.SyncInterval, logger)
		scheduler.Start()
		logger.Info("sync scheduler started", zap.Duration("interval", cfg.SyncInterval))
	}

	storeHandler := handler.NewStoreHandler(stockService, productService, syncService, collector)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: storeHandler.Routes(logger),
	}

	go func() {
		logger.Info("store node listening", zap.String("addr", cfg.HTTPAddr))
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

	if scheduler != nil {
		scheduler.Stop()
		logger.Info("sync scheduler stopped")
	}

	db.Close()
	logger.Info("store node stopped")
}
