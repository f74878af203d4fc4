package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"lesson-sheet-api/internal/config"
	"lesson-sheet-api/internal/domain/service"
	"lesson-sheet-api/internal/workflow/port"
)

type fakeChatModel struct {
	out      *schema.Message
	err      error
	input    []*schema.Message
	opts     *model.Options
	provider string
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.input = input
	m.opts = model.GetCommonOptions(nil, opts...)
	m.provider = service.ProviderFromContext(ctx)
	return m.out, m.err
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type fakeFactory struct {
	m          *fakeChatModel
	credential string
}

func (f *fakeFactory) Get(_ context.Context, _ string, credential string) (model.BaseChatModel, error) {
	f.credential = credential
	return f.m, nil
}

func TestEinoClientGenerate(t *testing.T) {
	m := &fakeChatModel{out: schema.AssistantMessage(`{"ok":true}`, nil)}
	f := &fakeFactory{m: m}
	c := NewEinoClient("openai", f)

	got, err := c.Generate(context.Background(), testRequest(), "user-key")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"ok":true}` {
		t.Fatalf("got %q", got)
	}
	if f.credential != "user-key" || m.provider != "openai" {
		t.Fatalf("credential/provider not propagated: %q %q", f.credential, m.provider)
	}
	if len(m.input) != 1 || m.input[0].Role != schema.User || m.input[0].Content != "system\n\nuser" {
		t.Fatalf("unexpected messages: %+v", m.input)
	}
	if m.opts.Temperature == nil || *m.opts.Temperature != 0.7 || m.opts.MaxTokens == nil || *m.opts.MaxTokens != 4096 {
		t.Fatalf("unexpected options: %+v", m.opts)
	}
}

func TestEinoClientErrors(t *testing.T) {
	for name, m := range map[string]*fakeChatModel{
		"call error":  {err: errors.New("429 rate limited")},
		"empty reply": {out: schema.AssistantMessage("  ", nil)},
		"nil reply":   {},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewEinoClient("openai", &fakeFactory{m: m}).Generate(context.Background(), testRequest(), "k")
			var ue *port.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
		})
	}
}

func TestEinoFactoryCachesPerCredential(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		DefaultProvider: "openai",
		Providers: map[string]config.ProviderConfig{
			"openai": {Type: "openai", APIKey: "configured", BaseURL: "http://127.0.0.1:1/v1", Model: "gpt-4o-mini"},
		},
	}}
	f := NewEinoFactory(cfg)
	ctx := context.Background()

	a, err := f.Get(ctx, "", "")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	b, _ := f.Get(ctx, "openai", "configured")
	if a != b {
		t.Fatalf("configured credential should reuse the cached model")
	}
	c, _ := f.Get(ctx, "openai", "other")
	if c == a {
		t.Fatalf("different credential must not share a model")
	}
	if _, err := f.Get(ctx, "missing", ""); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestNewGenerationClientSelectsProvider(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		DefaultProvider: "gemini",
		Providers: map[string]config.ProviderConfig{
			"gemini": {Type: "gemini", APIKey: " env-key "},
			"bad":    {Type: "grpc"},
		},
	}}
	c, err := NewGenerationClient(cfg, NewEinoFactory(cfg), nil)
	if err != nil {
		t.Fatalf("NewGenerationClient: %v", err)
	}
	if _, ok := c.(*GeminiClient); !ok {
		t.Fatalf("expected GeminiClient, got %T", c)
	}
	if DefaultCredential(cfg) != "env-key" {
		t.Fatalf("unexpected default credential")
	}

	cfg.LLM.DefaultProvider = "bad"
	if _, err := NewGenerationClient(cfg, NewEinoFactory(cfg), nil); err == nil {
		t.Fatalf("expected error for unsupported provider type")
	}
}
