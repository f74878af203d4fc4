package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/domain/repository"
	"lesson-sheet-api/pkg/logger"
	"lesson-sheet-api/pkg/metrics"
)

// CachedSheetRepository 为历史列表与单条读取加一层缓存；写入后清空列表缓存。
// 已归档教案不可修改，单条缓存无需失效。
type CachedSheetRepository struct {
	next  repository.SheetRepository
	cache *Cache
	keys  *Client
	ttl   time.Duration
}

// NewCachedSheetRepository 创建带缓存的仓储
func NewCachedSheetRepository(next repository.SheetRepository, client *Client, ttl time.Duration) *CachedSheetRepository {
	return &CachedSheetRepository{
		next:  next,
		cache: NewCache(client),
		keys:  client,
		ttl:   ttl,
	}
}

func (r *CachedSheetRepository) Create(ctx context.Context, sheet *entity.EducationalSheet) error {
	if err := r.next.Create(ctx, sheet); err != nil {
		return err
	}
	if err := r.cache.InvalidatePattern(ctx, r.keys.Key("history", "recent", "*")); err != nil {
		logger.Warn(ctx, "invalidate history cache failed", "error", err.Error())
	}
	return nil
}

func (r *CachedSheetRepository) GetByID(ctx context.Context, id string) (*entity.EducationalSheet, error) {
	data, hit, err := r.cache.GetOrLoad(ctx, r.keys.Key("history", "sheet", id), r.ttl, func(ctx context.Context) (any, error) {
		return r.next.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	recordLookup(hit)

	var sheet entity.EducationalSheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		metrics.HistoryCacheTotal.WithLabelValues("error").Inc()
		return r.next.GetByID(ctx, id)
	}
	return &sheet, nil
}

func (r *CachedSheetRepository) ListRecent(ctx context.Context, limit int) ([]*entity.EducationalSheet, error) {
	key := r.keys.Key("history", "recent", strconv.Itoa(limit))
	data, hit, err := r.cache.GetOrLoad(ctx, key, r.ttl, func(ctx context.Context) (any, error) {
		return r.next.ListRecent(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	recordLookup(hit)

	var sheets []*entity.EducationalSheet
	if err := json.Unmarshal(data, &sheets); err != nil {
		metrics.HistoryCacheTotal.WithLabelValues("error").Inc()
		return r.next.ListRecent(ctx, limit)
	}
	return sheets, nil
}

func recordLookup(hit bool) {
	if hit {
		metrics.HistoryCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	metrics.HistoryCacheTotal.WithLabelValues("miss").Inc()
}
