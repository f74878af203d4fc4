package sheet

import (
	"context"

	"github.com/google/uuid"

	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/domain/repository"
	apperrors "lesson-sheet-api/pkg/errors"
)

// HistoryOptions 历史列表条数限制
type HistoryOptions struct {
	DefaultLimit int
	MaxLimit     int
}

// StoredSheet 已归档教案及其时长分配
type StoredSheet struct {
	ID           string
	Record       *entity.EducationalSheet
	Request      *entity.SheetRequest
	Content      *entity.SheetContent
	TotalMinutes int
	Durations    entity.DurationPlan
}

// History 读取已归档教案，用于再次展示与导出
type History struct {
	repo repository.SheetRepository
	opts HistoryOptions
}

// NewHistory repo 为 nil 时所有读取返回 ErrServiceUnavailable
func NewHistory(repo repository.SheetRepository, opts HistoryOptions) *History {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 20
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	return &History{repo: repo, opts: opts}
}

// ClampLimit 非正数取默认值，超过上限截断
func (h *History) ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return h.opts.DefaultLimit
	case limit > h.opts.MaxLimit:
		return h.opts.MaxLimit
	default:
		return limit
	}
}

// List 按创建时间倒序返回最近的教案
func (h *History) List(ctx context.Context, limit int) ([]*entity.EducationalSheet, error) {
	if h.repo == nil {
		return nil, apperrors.ErrServiceUnavailable.WithDetail("sheet storage is disabled")
	}
	return h.repo.ListRecent(ctx, h.ClampLimit(limit))
}

// Get 读取一条教案并解码内容；非 UUID 的 id 直接视为不存在
func (h *History) Get(ctx context.Context, id string) (*StoredSheet, error) {
	if h.repo == nil {
		return nil, apperrors.ErrServiceUnavailable.WithDetail("sheet storage is disabled")
	}
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return nil, apperrors.ErrSheetNotFound.WithDetail(id)
	}
	rec, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := rec.Content()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "stored sheet is unreadable")
	}
	req := rec.Request()
	total, plan := PlanFor(req.Duree)
	return &StoredSheet{
		ID:           rec.ID,
		Record:       rec,
		Request:      req,
		Content:      content,
		TotalMinutes: total,
		Durations:    plan,
	}, nil
}
