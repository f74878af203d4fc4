// Package main 初始化数据库：建库并迁移教案表
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"lesson-sheet-api/internal/config"
	"lesson-sheet-api/internal/infrastructure/persistence/postgres"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting database bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	pgCfg := &cfg.Database.Postgres

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// 2. 确保数据库存在
	created, err := postgres.EnsureDatabase(ctx, pgCfg)
	if err != nil {
		log.Fatalf("failed to ensure database: %v", err)
	}
	if created {
		fmt.Printf("Database %s created.\n", pgCfg.Database)
	} else {
		fmt.Printf("Database %s already exists.\n", pgCfg.Database)
	}

	// 3. 迁移表结构
	client, err := postgres.NewClient(pgCfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer client.Close()

	if err := client.AutoMigrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	fmt.Println("Bootstrap completed successfully.")
}
