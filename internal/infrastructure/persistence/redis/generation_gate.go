package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// releaseScript 值仍为本次 token 时才删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GenerationGate 基于 SET NX 的会话级生成闸门，TTL 兜底异常路径未释放的情况
type GenerationGate struct {
	client *Client
	ttl    time.Duration
}

// NewGenerationGate 创建闸门
func NewGenerationGate(client *Client, ttl time.Duration) *GenerationGate {
	return &GenerationGate{client: client, ttl: ttl}
}

func (g *GenerationGate) key(session string) string {
	return g.client.Key("gate", session)
}

// Acquire 占用成功返回 token，释放时需原样传回
func (g *GenerationGate) Acquire(ctx context.Context, session string) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "redis.GenerationGate.Acquire")
	defer span.End()

	token := uuid.NewString()
	ok, err := g.client.rdb.SetNX(ctx, g.key(session), token, g.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return "", false, err
	}
	span.SetAttributes(attribute.Bool("gate.acquired", ok))
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release 比较 token 后删除，不会误删过期后他人的占用
func (g *GenerationGate) Release(ctx context.Context, session, token string) error {
	ctx, span := tracer.Start(ctx, "redis.GenerationGate.Release")
	defer span.End()

	n, err := releaseScript.Run(ctx, g.client.rdb, []string{g.key(session)}, token).Int()
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttributes(attribute.Bool("gate.released", n == 1))
	return nil
}
