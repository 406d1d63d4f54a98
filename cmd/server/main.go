package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/diewo77/invoice-desk/internal/config"
	"github.com/diewo77/invoice-desk/internal/db"
	"github.com/diewo77/invoice-desk/internal/logger"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

const demoPassword = "demo1234"

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.New(cfg.App.Dev)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	dbConn, err := db.Connect(cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	if *migrateOnlyFlag {
		if err := db.Apply(dbConn, cfg); err != nil {
			zl.Fatal("migration failed", zap.Error(err))
		}
		zl.Info("migrations completed", zap.String("mode", cfg.App.Migrations))
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn, demoPassword); err != nil {
			zl.Fatal("seeding failed", zap.Error(err))
		}
		zl.Info("seeding completed", zap.String("user", db.DemoEmail))
		return
	}

	if err := db.Apply(dbConn, cfg); err != nil {
		zl.Fatal("migration failed", zap.Error(err))
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn, demoPassword); err != nil {
			zl.Fatal("seeding failed", zap.Error(err))
		}
	}

	routerCfg := NewRouterConfig(dbConn, cfg.App.SessionSecret, zl)
	appHandler := NewApp(routerCfg, zl)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zl.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("error during shutdown", zap.Error(err))
	}
	zl.Info("server stopped gracefully")
}
