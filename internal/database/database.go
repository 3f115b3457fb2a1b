package database

import (
	"fmt"

	"github.com/typograph/core/internal/config"
	"github.com/typograph/core/internal/models"
	"github.com/typograph/core/internal/modules/schema"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a MySQL connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsDev() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.DSN,
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	return db, nil
}

// Migrate runs GORM auto-migration for all models and records the schema
// version the defaulting engine gates on.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.UserModel{},
		&models.CategoryModel{},
		&models.TagModel{},
		&models.ArticleModel{},
		&models.CommentModel{},
		&models.TrackbackModel{},
		&models.PingModel{},
		&models.ResourceModel{},
		&models.OptionModel{},
	); err != nil {
		return err
	}

	return schema.WriteVersion(db, schema.CurrentVersion)
}
