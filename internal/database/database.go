package database

import (
	"fmt"
	"log/slog"

	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func Connect(cfg *config.DatabaseConfig, debug bool, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if debug {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres, "":
		dialector = postgres.Open(cfg.DSN())
	case DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying db: %w", err)
	}

	// Connection pool settings
	if cfg.Driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	if cfg.Driver == DriverSQLite {
		log.Info("connected to database", "driver", cfg.Driver, "path", cfg.SQLitePath)
	} else {
		log.Info("connected to database", "driver", DriverPostgres, "host", cfg.Host, "database", cfg.Name)
	}

	return db, nil
}

// AllModels lists every table owned by the application, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Couple{},
		&models.CoupleMember{},
		&models.CoupleInvite{},
		&models.EventType{},
		&models.Event{},
		&models.MediaFile{},
		&models.MoodBoard{},
		&models.MoodBoardItem{},
		&models.MoodBoardReaction{},
		&models.EventBudget{},
		&models.BudgetCategory{},
		&models.EventBudgetCategory{},
		&models.BudgetLineItem{},
		&models.HoneymoonPlan{},
		&models.HoneymoonItem{},
		&models.Comment{},
		&models.ActivityLog{},
		&models.Task{},
		&models.Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
