// Package export 生成导出产物并交给暂存，下载与生成相互独立
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lesson-sheet-api/internal/application/render"
	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/domain/repository"
	apperrors "lesson-sheet-api/pkg/errors"
	"lesson-sheet-api/pkg/logger"
	"lesson-sheet-api/pkg/metrics"
	"lesson-sheet-api/pkg/tracer"
)

const defaultTTL = 30 * time.Minute

// 导出文件类型
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Request 导出请求
type Request struct {
	Sheet     *entity.SheetRequest
	Content   *entity.SheetContent
	Format    entity.ExportFormat
	AutoPrint bool
}

// Service 导出服务
type Service struct {
	store repository.ExportStore
	ttl   time.Duration
	now   func() time.Time
}

// NewService 创建导出服务
func NewService(store repository.ExportStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Service{store: store, ttl: ttl, now: time.Now}
}

// Create 渲染并暂存导出产物
func (s *Service) Create(ctx context.Context, in Request) (a *entity.ExportArtifact, err error) {
	ctx, span := tracer.Start(ctx, "export.Create")
	defer func() { tracer.End(span, err) }()

	doc := render.BuildDocument(in.Sheet, in.Content)

	var (
		data        []byte
		contentType string
		ext         string
	)
	switch in.Format {
	case entity.ExportFormatXLSX:
		data, err = render.RenderWorkbook(doc)
		contentType, ext = ContentTypeXLSX, "xlsx"
	default:
		in.Format = entity.ExportFormatHTML
		data, err = render.RenderExport(doc, render.ExportOptions{AutoPrint: in.AutoPrint})
		contentType, ext = ContentTypeHTML, "html"
	}
	if err != nil {
		return nil, apperrors.ErrRenderFailed.WithError(err)
	}

	now := s.now()
	id := uuid.NewString()
	a = &entity.ExportArtifact{
		ID:          id,
		Format:      in.Format,
		ContentType: contentType,
		Filename:    fmt.Sprintf("fiche-pedagogique-%s.%s", id[:8], ext),
		Data:        data,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err = s.store.Put(ctx, a, s.ttl); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorageError, "failed to store export")
	}

	metrics.SheetExportTotal.WithLabelValues(string(in.Format)).Inc()
	logger.Info(ctx, "export created", "export_id", id, "format", string(in.Format), "size", len(data))
	return a, nil
}

// Get 读取暂存的产物
func (s *Service) Get(ctx context.Context, id string) (*entity.ExportArtifact, error) {
	return s.store.Get(ctx, id)
}
