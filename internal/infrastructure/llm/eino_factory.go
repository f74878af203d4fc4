package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"lesson-sheet-api/internal/config"
)

// maxCachedModels 按凭证缓存的 ChatModel 上限，超过后整体重建缓存
const maxCachedModels = 64

// EinoFactory 管理 OpenAI 兼容 Provider 的 Eino ChatModel 实例。
// 凭证来自请求头或配置，缓存键只保存凭证摘要。
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定 Provider 与凭证对应的 ChatModel，name 为空时使用默认 Provider
func (f *EinoFactory) Get(ctx context.Context, name, credential string) (model.BaseChatModel, error) {
	name, providerCfg, ok := f.config.Provider(name)
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}
	if credential == "" {
		credential = providerCfg.APIKey
	}
	key := cacheKey(name, credential)

	f.mu.RLock()
	m, ok := f.models[key]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[key]; ok {
		return m, nil
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      credential,
		BaseURL:     providerCfg.BaseURL,
		Model:       providerCfg.Model,
		MaxTokens:   ptrInt(providerCfg.MaxTokens),
		Temperature: ptrFloat32(float32(providerCfg.Temperature)),
		Timeout:     providerCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	if len(f.models) >= maxCachedModels {
		f.models = make(map[string]model.BaseChatModel)
	}
	f.models[key] = chatModel
	return chatModel, nil
}

func cacheKey(name, credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return name + ":" + hex.EncodeToString(sum[:8])
}

func ptrFloat32(f float32) *float32 {
	return &f
}

func ptrInt(i int) *int {
	if i <= 0 {
		return nil
	}
	return &i
}
