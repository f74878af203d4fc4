package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lesson-sheet-api/internal/domain/entity"
	apperrors "lesson-sheet-api/pkg/errors"
)

// ExportStore 导出产物暂存，过期由 Redis TTL 负责
type ExportStore struct {
	client *Client
}

// NewExportStore 创建导出暂存
func NewExportStore(client *Client) *ExportStore {
	return &ExportStore{client: client}
}

// Put 写入产物
func (s *ExportStore) Put(ctx context.Context, artifact *entity.ExportArtifact, ttl time.Duration) error {
	ctx, span := tracer.Start(ctx, "redis.ExportStore.Put",
		trace.WithAttributes(
			attribute.String("export.id", artifact.ID),
			attribute.Int("export.size", len(artifact.Data)),
		))
	defer span.End()

	payload, err := json.Marshal(artifact)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := s.client.rdb.Set(ctx, s.client.Key("export", artifact.ID), payload, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to store export: %w", err)
	}
	return nil
}

// Get 读取产物
func (s *ExportStore) Get(ctx context.Context, id string) (*entity.ExportArtifact, error) {
	ctx, span := tracer.Start(ctx, "redis.ExportStore.Get",
		trace.WithAttributes(attribute.String("export.id", id)))
	defer span.End()

	payload, err := s.client.rdb.Get(ctx, s.client.Key("export", id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrExportNotFound.WithDetail(id)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load export: %w", err)
	}

	var artifact entity.ExportArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode export: %w", err)
	}
	return &artifact, nil
}
