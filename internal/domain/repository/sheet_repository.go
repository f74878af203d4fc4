// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"lesson-sheet-api/internal/domain/entity"
)

// SheetRepository 教案仓储接口（只追加，不更新不删除）
type SheetRepository interface {
	// Create 写入一条教案，ID 由存储层分配
	Create(ctx context.Context, sheet *entity.EducationalSheet) error
	// GetByID 按 ID 读取
	GetByID(ctx context.Context, id string) (*entity.EducationalSheet, error)
	// ListRecent 按创建时间倒序读取最近 limit 条
	ListRecent(ctx context.Context, limit int) ([]*entity.EducationalSheet, error)
}
