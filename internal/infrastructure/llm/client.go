// Package llm 提供生成服务客户端：Gemini 原生接口与基于 Eino 的 OpenAI 兼容接口
package llm

import (
	"fmt"
	"strings"

	"lesson-sheet-api/internal/config"
	"lesson-sheet-api/internal/domain/service"
	"lesson-sheet-api/internal/workflow/port"
)

// NewGenerationClient 按 llm.default_provider 的类型选择实现
func NewGenerationClient(cfg *config.Config, factory *EinoFactory, usage service.LLMUsageRecorder) (port.GenerationClient, error) {
	name, providerCfg, ok := cfg.LLM.Provider("")
	if !ok {
		return nil, fmt.Errorf("provider %q not found in LLM config", name)
	}

	switch strings.ToLower(strings.TrimSpace(providerCfg.Type)) {
	case config.ProviderTypeGemini, "":
		return NewGeminiClient(name, providerCfg, nil, usage), nil
	case config.ProviderTypeOpenAI:
		return NewEinoClient(name, factory), nil
	default:
		return nil, fmt.Errorf("unsupported provider type %q for %s", providerCfg.Type, name)
	}
}

// DefaultCredential 默认 Provider 在配置中的凭证（通常来自环境变量）
func DefaultCredential(cfg *config.Config) string {
	_, providerCfg, _ := cfg.LLM.Provider("")
	return strings.TrimSpace(providerCfg.APIKey)
}
