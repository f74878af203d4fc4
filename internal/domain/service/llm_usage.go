package service

import "context"

// LLMUsageInput 一次生成调用的可观测数据（不含凭证与内容）
type LLMUsageInput struct {
	Provider string
	Model    string
	// Status success | error
	Status string

	PromptTokens     int
	CompletionTokens int
	DurationMs       int
}

// LLMUsageRecorder 记录生成调用用量；实现应为 best-effort，不阻塞主流程
type LLMUsageRecorder interface {
	Record(ctx context.Context, in LLMUsageInput)
}
