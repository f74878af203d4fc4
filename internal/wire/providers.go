package wire

import (
	"context"

	"github.com/google/wire"

	"lesson-sheet-api/internal/application/export"
	"lesson-sheet-api/internal/application/sheet"
	"lesson-sheet-api/internal/config"
	"lesson-sheet-api/internal/domain/repository"
	"lesson-sheet-api/internal/domain/service"
	"lesson-sheet-api/internal/infrastructure/llm"
	"lesson-sheet-api/internal/infrastructure/persistence/postgres"
	"lesson-sheet-api/internal/infrastructure/persistence/redis"
	"lesson-sheet-api/internal/interfaces/http/handler"
	"lesson-sheet-api/internal/interfaces/http/middleware"
	"lesson-sheet-api/internal/interfaces/http/router"
	"lesson-sheet-api/internal/workflow/port"
	"lesson-sheet-api/internal/workflow/prompt"
	"lesson-sheet-api/pkg/logger"
)

// DataSet 存储与缓存（均为可选依赖）
var DataSet = wire.NewSet(
	ProvidePostgresClient,
	ProvideRedisClient,
	ProvideSheetRepository,
	ProvideExportStore,
	ProvideRateLimiter,
)

// GenerationSet 教案生成流水线
var GenerationSet = wire.NewSet(
	prompt.NewRegistry,
	sheet.NewRequestBuilder,
	llm.NewMetricsUsageRecorder,
	wire.Bind(new(service.LLMUsageRecorder), new(*llm.MetricsUsageRecorder)),
	llm.NewEinoFactory,
	llm.NewGenerationClient,
	ProvideGenerationGate,
	ProvidePersistenceGateway,
	ProvideGenerator,
	ProvideHistory,
	ProvideExportService,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewSheetHandler,
	handler.NewExportHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)

// ProvidePostgresClient 提供 PostgreSQL 客户端；未启用或不可达时返回 nil，归档与历史随之关闭
func ProvidePostgresClient(ctx context.Context, cfg *config.Config) (*postgres.Client, func(), error) {
	if !cfg.Database.Postgres.Enabled {
		return nil, func() {}, nil
	}
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Warn(ctx, "postgres not available, sheet storage disabled", "error", err.Error())
		return nil, func() {}, nil
	}
	if err := client.AutoMigrate(ctx); err != nil {
		logger.Warn(ctx, "auto migrate failed", "error", err.Error())
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端；未启用或不可达时回退到进程内实现
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis not available, using in-process gate and export store", "error", err.Error())
		return nil, func() {}, nil
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideSheetRepository 教案仓储；启用 Redis 时为历史读取加缓存
func ProvideSheetRepository(cfg *config.Config, pg *postgres.Client, rc *redis.Client) repository.SheetRepository {
	if pg == nil || !cfg.Features.Persistence.Enabled {
		return nil
	}
	repo := postgres.NewSheetRepository(pg)
	if rc == nil || cfg.Features.History.CacheTTL <= 0 {
		return repo
	}
	return redis.NewCachedSheetRepository(repo, rc, cfg.Features.History.CacheTTL)
}

// ProvideExportStore 导出暂存
func ProvideExportStore(rc *redis.Client) repository.ExportStore {
	if rc == nil {
		return export.NewMemoryStore()
	}
	return redis.NewExportStore(rc)
}

// ProvideRateLimiter 限流器；无 Redis 时不限流
func ProvideRateLimiter(rc *redis.Client) middleware.RateLimiter {
	if rc == nil {
		return nil
	}
	return redis.NewRateLimiter(rc)
}

// ProvideGenerationGate 会话级生成闸门
func ProvideGenerationGate(cfg *config.Config, rc *redis.Client) sheet.GenerationGate {
	gateCfg := cfg.Features.GenerationGate
	switch {
	case !gateCfg.Enabled:
		return sheet.NopGate{}
	case rc == nil:
		return sheet.NewLocalGate(gateCfg.TTL)
	default:
		return redis.NewGenerationGate(rc, gateCfg.TTL)
	}
}

// ProvidePersistenceGateway 归档网关
func ProvidePersistenceGateway(cfg *config.Config, repo repository.SheetRepository) *sheet.PersistenceGateway {
	return sheet.NewPersistenceGateway(repo, sheet.PersistenceOptions{
		Async:   cfg.Features.Persistence.Async,
		Timeout: cfg.Features.Persistence.Timeout,
	})
}

// ProvideGenerator 生成流水线
func ProvideGenerator(
	cfg *config.Config,
	builder *sheet.RequestBuilder,
	client port.GenerationClient,
	gate sheet.GenerationGate,
	persistence *sheet.PersistenceGateway,
) *sheet.Generator {
	return sheet.NewGenerator(builder, client, gate, persistence, sheet.GeneratorConfig{
		DefaultCredential: llm.DefaultCredential(cfg),
		RawPreviewRunes:   cfg.Observability.Logging.RawPreviewRunes,
	})
}

// ProvideHistory 历史读取
func ProvideHistory(cfg *config.Config, repo repository.SheetRepository) *sheet.History {
	return sheet.NewHistory(repo, sheet.HistoryOptions{
		DefaultLimit: cfg.Features.History.DefaultLimit,
		MaxLimit:     cfg.Features.History.MaxLimit,
	})
}

// ProvideExportService 导出服务
func ProvideExportService(cfg *config.Config, store repository.ExportStore) *export.Service {
	return export.NewService(store, cfg.Features.Export.TTL)
}

// ProvideHealthHandler 就绪检查只包含已启用的依赖
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, rc *redis.Client) *handler.HealthHandler {
	checks := make(map[string]handler.HealthChecker)
	if pg != nil {
		checks["postgres"] = pg
	} else if cfg.Database.Postgres.Enabled {
		checks["postgres"] = nil
	}
	if rc != nil {
		checks["redis"] = rc
	} else if cfg.Cache.Redis.Enabled {
		checks["redis"] = nil
	}
	return handler.NewHealthHandler(cfg.App.Version, checks)
}
