package export

import (
	"context"
	"sync"
	"time"

	"lesson-sheet-api/internal/domain/entity"
	apperrors "lesson-sheet-api/pkg/errors"
)

// MemoryStore 进程内暂存，Redis 未启用时使用
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	artifact  *entity.ExportArtifact
	expiresAt time.Time
}

// NewMemoryStore 创建进程内暂存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, a *entity.ExportArtifact, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)
	s.items[a.ID] = memoryItem{artifact: a, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*entity.ExportArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked(s.now())
	v, ok := s.items[id]
	if !ok {
		return nil, apperrors.ErrExportNotFound.WithDetail(id)
	}
	return v.artifact, nil
}

func (s *MemoryStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if !now.Before(v.expiresAt) {
			delete(s.items, k)
		}
	}
}
