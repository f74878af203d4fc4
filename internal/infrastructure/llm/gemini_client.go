package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lesson-sheet-api/internal/config"
	"lesson-sheet-api/internal/domain/service"
	"lesson-sheet-api/internal/workflow/port"
	"lesson-sheet-api/pkg/tracer"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-2.5-flash"
	maxErrorBodyBytes    = 1 << 20
)

// GeminiClient 直接调用 Gemini generateContent REST 接口
type GeminiClient struct {
	name       string
	baseURL    string
	model      string
	httpClient *http.Client
	usage      service.LLMUsageRecorder
}

// NewGeminiClient 创建 Gemini 客户端；httpClient 为 nil 时按 Provider 超时创建
func NewGeminiClient(name string, cfg config.ProviderConfig, httpClient *http.Client, usage service.LLMUsageRecorder) *GeminiClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	if httpClient == nil {
		// Timeout 为 0 时只依赖传输层自身的超时
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &GeminiClient{
		name:       name,
		baseURL:    baseURL,
		model:      modelName,
		httpClient: httpClient,
		usage:      usage,
	}
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

// Generate 发出一次 generateContent 请求并返回第一个候选的文本
func (c *GeminiClient) Generate(ctx context.Context, req *port.GenerationRequest, credential string) (text string, err error) {
	start := time.Now()
	usage := service.LLMUsageInput{Provider: c.name, Model: c.model}

	ctx, span := tracer.Start(ctx, "llm.gemini.generateContent", trace.WithAttributes(
		attribute.String("llm.provider", c.name),
		attribute.String("llm.model", c.model),
	))
	defer func() {
		usage.DurationMs = int(time.Since(start).Milliseconds())
		usage.Status = "success"
		if err != nil {
			usage.Status = "error"
		}
		if c.usage != nil {
			c.usage.Record(ctx, usage)
		}
		tracer.End(span, err)
	}()

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: req.Instruction}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      req.Temperature,
			MaxOutputTokens:  req.MaxOutputTokens,
			ResponseMimeType: req.ResponseMIMEType,
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &port.UpstreamError{Provider: c.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &port.UpstreamError{Provider: c.name, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &port.UpstreamError{Provider: c.name, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.UsageMetadata != nil {
		usage.PromptTokens = out.UsageMetadata.PromptTokenCount
		usage.CompletionTokens = out.UsageMetadata.CandidatesTokenCount
	}

	if len(out.Candidates) == 0 {
		reason := "no candidates returned"
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			reason = "blocked: " + out.PromptFeedback.BlockReason
		}
		return "", &port.UpstreamError{Provider: c.name, Body: reason}
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if sb.Len() == 0 {
		reason := "empty candidate"
		if fr := out.Candidates[0].FinishReason; fr != "" {
			reason += " (finish reason " + fr + ")"
		}
		return "", &port.UpstreamError{Provider: c.name, Body: reason}
	}
	return sb.String(), nil
}
