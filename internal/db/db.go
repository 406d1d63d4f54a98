// Package db opens the database and keeps its schema up to date.
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/invoice-desk/internal/config"
)

// Connect opens the configured database, retrying while postgres starts up.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	switch cfg.Driver {
	case "sqlite":
		log.Info("opening sqlite database", zap.String("path", cfg.Path))
		return gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	case "postgres", "":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	log.Info("connecting to database",
		zap.String("host", cfg.Host), zap.Int("port", cfg.Port),
		zap.String("dbname", cfg.DBName), zap.String("user", cfg.User))

	var (
		conn *gorm.DB
		err  error
	)
	for i := 0; i < 5; i++ {
		conn, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	return conn, nil
}
