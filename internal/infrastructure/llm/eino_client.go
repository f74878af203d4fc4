package llm

import (
	"context"
	"strings"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"lesson-sheet-api/internal/domain/service"
	"lesson-sheet-api/internal/workflow/port"
)

// EinoClient 通过 Eino ChatModel 调用 OpenAI 兼容接口。
// 指标与追踪由全局 callbacks 负责。
type EinoClient struct {
	name    string
	factory port.ChatModelFactory
}

// NewEinoClient 创建 EinoClient
func NewEinoClient(name string, factory port.ChatModelFactory) *EinoClient {
	return &EinoClient{name: name, factory: factory}
}

// Generate 单次调用，不重试
func (c *EinoClient) Generate(ctx context.Context, req *port.GenerationRequest, credential string) (string, error) {
	ctx = service.WithProvider(ctx, c.name)

	chatModel, err := c.factory.Get(ctx, c.name, credential)
	if err != nil {
		return "", &port.UpstreamError{Provider: c.name, Err: err}
	}

	msgs := []*schema.Message{schema.UserMessage(req.Instruction)}
	out, err := chatModel.Generate(ctx, msgs, buildModelOptions(req)...)
	if err != nil {
		return "", &port.UpstreamError{Provider: c.name, Err: err}
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		reason := "empty completion"
		if out != nil && out.ResponseMeta != nil && out.ResponseMeta.FinishReason != "" {
			reason += " (finish reason " + out.ResponseMeta.FinishReason + ")"
		}
		return "", &port.UpstreamError{Provider: c.name, Body: reason}
	}
	return out.Content, nil
}

func buildModelOptions(req *port.GenerationRequest) []model.Option {
	opts := make([]model.Option, 0, 3)
	opts = append(opts, model.WithTemperature(req.Temperature))
	if req.MaxOutputTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxOutputTokens))
	}
	if req.ResponseMIMEType == "application/json" {
		opts = append(opts, openaiopts.WithExtraFields(map[string]any{
			"response_format": map[string]any{"type": "json_object"},
		}))
	}
	return opts
}
