package db

import (
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"

	"github.com/diewo77/invoice-desk/internal/config"
	"github.com/diewo77/invoice-desk/internal/models"
)

// Migrate runs AutoMigrate for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// RunSQLMigrations applies the versioned SQL files in dir (postgres only).
func RunSQLMigrations(cfg config.DatabaseConfig, dir string) error {
	if cfg.Driver == "sqlite" {
		return errors.New("sql migrations require the postgres driver")
	}
	m, err := migrate.New("file://"+dir, cfg.URL())
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Apply migrates the schema according to the configured mode.
func Apply(db *gorm.DB, cfg *config.Config) error {
	switch cfg.App.Migrations {
	case config.MigrateOff:
		return nil
	case config.MigrateSQL:
		return RunSQLMigrations(cfg.Database, cfg.App.MigrationsDir)
	default:
		return Migrate(db)
	}
}
