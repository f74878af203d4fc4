package port

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
)

// GenerationRequest 发往生成服务的单条指令及固定生成参数
type GenerationRequest struct {
	Instruction      string
	Temperature      float32
	MaxOutputTokens  int
	ResponseMIMEType string
}

// GenerationClient 工作流层对生成服务的最小依赖（port）。
// 每次调用只发出一次请求，不重试。
type GenerationClient interface {
	Generate(ctx context.Context, req *GenerationRequest, credential string) (string, error)
}

// ChatModelFactory 按 Provider 名称与凭证返回 ChatModel
type ChatModelFactory interface {
	Get(ctx context.Context, name, credential string) (model.BaseChatModel, error)
}

// UpstreamError 生成服务调用失败（传输错误、非 2xx、无候选结果）
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s API error: %s", e.Provider, e.Body)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }
