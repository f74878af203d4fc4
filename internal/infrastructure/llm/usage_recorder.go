package llm

import (
	"context"

	"lesson-sheet-api/internal/domain/service"
	"lesson-sheet-api/pkg/logger"
	"lesson-sheet-api/pkg/metrics"
)

// MetricsUsageRecorder 将调用用量写入 Prometheus 指标与调试日志
type MetricsUsageRecorder struct{}

// NewMetricsUsageRecorder 创建 MetricsUsageRecorder
func NewMetricsUsageRecorder() *MetricsUsageRecorder {
	return &MetricsUsageRecorder{}
}

func (MetricsUsageRecorder) Record(ctx context.Context, in service.LLMUsageInput) {
	metrics.LLMCallTotal.WithLabelValues(in.Provider, in.Model, in.Status).Inc()
	if in.DurationMs > 0 {
		metrics.LLMCallDuration.WithLabelValues(in.Provider, in.Model).Observe(float64(in.DurationMs) / 1000)
	}
	if in.PromptTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(in.Provider, in.Model, "prompt").Add(float64(in.PromptTokens))
	}
	if in.CompletionTokens > 0 {
		metrics.LLMTokensUsed.WithLabelValues(in.Provider, in.Model, "completion").Add(float64(in.CompletionTokens))
	}
	logger.Debug(ctx, "llm call finished",
		"provider", in.Provider,
		"model", in.Model,
		"status", in.Status,
		"prompt_tokens", in.PromptTokens,
		"completion_tokens", in.CompletionTokens,
		"duration_ms", in.DurationMs,
	)
}
