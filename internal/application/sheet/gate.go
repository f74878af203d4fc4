package sheet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GenerationGate 保证同一会话同一时刻只有一个生成在进行
type GenerationGate interface {
	// Acquire 成功时返回本次占用的 token；已被占用返回 ok=false
	Acquire(ctx context.Context, session string) (token string, ok bool, err error)
	// Release 仅当占用仍属于 token 时释放，过期后被他人接手的占用保持不变
	Release(ctx context.Context, session, token string) error
}

// LocalGate 进程内闸门，未启用 Redis 时使用；过期时间防止异常路径下永久占用
type LocalGate struct {
	mu   sync.Mutex
	ttl  time.Duration
	held map[string]localHold
	now  func() time.Time
}

type localHold struct {
	token     string
	expiresAt time.Time
}

// NewLocalGate 创建进程内闸门
func NewLocalGate(ttl time.Duration) *LocalGate {
	return &LocalGate{
		ttl:  ttl,
		held: make(map[string]localHold),
		now:  time.Now,
	}
}

func (g *LocalGate) Acquire(_ context.Context, session string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if h, ok := g.held[session]; ok && (g.ttl <= 0 || now.Before(h.expiresAt)) {
		return "", false, nil
	}
	token := uuid.NewString()
	g.held[session] = localHold{token: token, expiresAt: now.Add(g.ttl)}
	return token, true, nil
}

func (g *LocalGate) Release(_ context.Context, session, token string) error {
	g.mu.Lock()
	if h, ok := g.held[session]; ok && h.token == token {
		delete(g.held, session)
	}
	g.mu.Unlock()
	return nil
}

// NopGate 关闭闸门时使用
type NopGate struct{}

func (NopGate) Acquire(context.Context, string) (string, bool, error) { return "", true, nil }

func (NopGate) Release(context.Context, string, string) error { return nil }
