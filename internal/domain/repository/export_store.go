package repository

import (
	"context"
	"time"

	"lesson-sheet-api/internal/domain/entity"
)

// ExportStore 导出产物暂存，过期后不可再取
type ExportStore interface {
	Put(ctx context.Context, artifact *entity.ExportArtifact, ttl time.Duration) error
	// Get 不存在或已过期时返回 ErrExportNotFound
	Get(ctx context.Context, id string) (*entity.ExportArtifact, error)
}
