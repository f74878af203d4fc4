package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lesson-sheet-api/internal/config"
)

// maintenanceDB 建库时连接的系统库
const maintenanceDB = "postgres"

// EnsureDatabase 目标库不存在时创建；返回是否新建
func EnsureDatabase(ctx context.Context, cfg *config.PostgresConfig) (bool, error) {
	db, err := gorm.Open(postgres.Open(DSN(cfg, maintenanceDB)), &gorm.Config{
		Logger: newGormLogger(cfg.LogLevel),
	})
	if err != nil {
		return false, fmt.Errorf("failed to open maintenance database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false, err
	}
	defer sqlDB.Close()

	var exists bool
	if err := db.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = ?)", cfg.Database).
		Scan(&exists).Error; err != nil {
		return false, fmt.Errorf("failed to check database: %w", err)
	}
	if exists {
		return false, nil
	}

	// CREATE DATABASE 不支持参数占位，库名需转义
	if err := db.WithContext(ctx).Exec("CREATE DATABASE " + pq.QuoteIdentifier(cfg.Database)).Error; err != nil {
		return false, fmt.Errorf("failed to create database %s: %w", cfg.Database, err)
	}
	return true, nil
}
