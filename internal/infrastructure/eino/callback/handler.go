package callback

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lesson-sheet-api/internal/domain/service"
	"lesson-sheet-api/pkg/tracer"
)

type startTimeKey struct{}

type modelNameKey struct{}

func newChatModelCallbackHandler(usageRecorder service.LLMUsageRecorder) *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			modelName := modelNameFromInput(input)
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())
			ctx = context.WithValue(ctx, modelNameKey{}, modelName)

			attrs := []attribute.KeyValue{
				attribute.String("llm.provider", service.ProviderFromContext(ctx)),
				attribute.String("llm.model", modelName),
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}

			ctx, _ = tracer.Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, _ *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			in := service.LLMUsageInput{
				Provider:   service.ProviderFromContext(ctx),
				Model:      modelNameFromOutput(ctx, output),
				Status:     "success",
				DurationMs: int(elapsedSeconds(ctx) * 1000),
			}
			if output != nil && output.TokenUsage != nil {
				in.PromptTokens = output.TokenUsage.PromptTokens
				in.CompletionTokens = output.TokenUsage.CompletionTokens
			}
			if usageRecorder != nil {
				usageRecorder.Record(ctx, in)
			}

			span := trace.SpanFromContext(ctx)
			span.SetAttributes(
				attribute.Int("llm.prompt_tokens", in.PromptTokens),
				attribute.Int("llm.completion_tokens", in.CompletionTokens),
			)
			tracer.End(span, nil)
			return ctx
		},

		OnError: func(ctx context.Context, _ *einocb.RunInfo, err error) context.Context {
			if usageRecorder != nil {
				usageRecorder.Record(ctx, service.LLMUsageInput{
					Provider:   service.ProviderFromContext(ctx),
					Model:      modelNameFromOutput(ctx, nil),
					Status:     "error",
					DurationMs: int(elapsedSeconds(ctx) * 1000),
				})
			}
			tracer.End(trace.SpanFromContext(ctx), err)
			return ctx
		},
	}
}

func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

// modelNameFromOutput 输出未携带模型名时使用 OnStart 记录的值
func modelNameFromOutput(ctx context.Context, out *model.CallbackOutput) string {
	if out != nil && out.Config != nil && out.Config.Model != "" {
		return out.Config.Model
	}
	s, _ := ctx.Value(modelNameKey{}).(string)
	return s
}
