package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"SevenDay/internal/model"
	"SevenDay/pkg/logger"
)

// Migrate 创建 / 升级所有表
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&model.Participant{},
		&model.CheckIn{},
		&model.Report{},
		&model.Post{},
	)
	if err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed successfully")
	return nil
}
