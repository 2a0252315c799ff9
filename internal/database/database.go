package database

import (
	"fmt"

	"lets-trade-dashboard-go/internal/config"
	"lets-trade-dashboard-go/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabase opens the process-scoped database connection and performs
// auto-migration. The returned *gorm.DB is shared by injection; nothing else
// constructs clients.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the schema for all dashboard tables.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Trade{},
		&models.Position{},
		&models.Strategy{},
		&models.Signal{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
