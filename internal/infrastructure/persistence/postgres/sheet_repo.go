// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lesson-sheet-api/internal/domain/entity"
	apperrors "lesson-sheet-api/pkg/errors"
)

// SheetRepository 教案仓储实现
type SheetRepository struct {
	client *Client
}

// NewSheetRepository 创建教案仓储
func NewSheetRepository(client *Client) *SheetRepository {
	return &SheetRepository{client: client}
}

// Create 写入一条教案
func (r *SheetRepository) Create(ctx context.Context, sheet *entity.EducationalSheet) error {
	ctx, span := tracer.Start(ctx, "postgres.SheetRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(sheet).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	return nil
}

// GetByID 按 ID 读取；不存在时返回 ErrSheetNotFound
func (r *SheetRepository) GetByID(ctx context.Context, id string) (*entity.EducationalSheet, error) {
	ctx, span := tracer.Start(ctx, "postgres.SheetRepository.GetByID")
	defer span.End()

	var sheet entity.EducationalSheet
	if err := r.client.db.WithContext(ctx).First(&sheet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSheetNotFound.WithDetail(id)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	return &sheet, nil
}

// ListRecent 按创建时间倒序读取最近 limit 条
func (r *SheetRepository) ListRecent(ctx context.Context, limit int) ([]*entity.EducationalSheet, error) {
	ctx, span := tracer.Start(ctx, "postgres.SheetRepository.ListRecent")
	defer span.End()

	var sheets []*entity.EducationalSheet
	if err := r.client.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&sheets).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	return sheets, nil
}
