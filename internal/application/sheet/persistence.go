package sheet

import (
	"context"
	"time"

	"lesson-sheet-api/internal/domain/entity"
	"lesson-sheet-api/internal/domain/repository"
	"lesson-sheet-api/pkg/logger"
	"lesson-sheet-api/pkg/metrics"
	"lesson-sheet-api/pkg/tracer"
)

// PersistenceOptions 归档行为
type PersistenceOptions struct {
	// Async 在后台以脱离请求的 context 写入，此时不返回 ID
	Async   bool
	Timeout time.Duration
}

// PersistenceGateway 尽力而为地归档生成结果，失败只记录不返回
type PersistenceGateway struct {
	repo repository.SheetRepository
	opts PersistenceOptions
}

// NewPersistenceGateway repo 为 nil 时归档被禁用
func NewPersistenceGateway(repo repository.SheetRepository, opts PersistenceOptions) *PersistenceGateway {
	return &PersistenceGateway{repo: repo, opts: opts}
}

// Enabled 是否配置了存储
func (g *PersistenceGateway) Enabled() bool {
	return g != nil && g.repo != nil
}

// Persist 写入一条教案；ok 为 false 表示未写入或结果未知（异步）
func (g *PersistenceGateway) Persist(ctx context.Context, req *entity.SheetRequest, content *entity.SheetContent) (string, bool) {
	if !g.Enabled() {
		metrics.SheetPersistTotal.WithLabelValues("skipped").Inc()
		return "", false
	}

	record, err := entity.NewEducationalSheet(req, content)
	if err != nil {
		g.report(ctx, &PersistenceError{Err: err})
		return "", false
	}

	if g.opts.Async {
		bg := context.WithoutCancel(ctx)
		go func() {
			_ = g.write(bg, record)
		}()
		return "", false
	}

	if err := g.write(ctx, record); err != nil {
		return "", false
	}
	return record.ID, true
}

func (g *PersistenceGateway) write(ctx context.Context, record *entity.EducationalSheet) (err error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}
	ctx, span := tracer.Start(ctx, "sheet.Persist")
	defer func() { tracer.End(span, err) }()

	if err = g.repo.Create(ctx, record); err != nil {
		g.report(ctx, &PersistenceError{Err: err})
		return err
	}
	metrics.SheetPersistTotal.WithLabelValues("success").Inc()
	logger.Debug(ctx, "sheet persisted", "sheet_id", record.ID)
	return nil
}

func (g *PersistenceGateway) report(ctx context.Context, err error) {
	metrics.SheetPersistTotal.WithLabelValues("error").Inc()
	logger.Warn(ctx, "sheet generated but not stored", "error", err.Error())
}
