package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"lesson-sheet-api/internal/config"
	"lesson-sheet-api/internal/domain/service"
	"lesson-sheet-api/internal/workflow/port"
)

type recordedUsage struct {
	mu   sync.Mutex
	last service.LLMUsageInput
	n    int
}

func (r *recordedUsage) Record(_ context.Context, in service.LLMUsageInput) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = in
	r.n++
}

func testRequest() *port.GenerationRequest {
	return &port.GenerationRequest{
		Instruction:      "system\n\nuser",
		Temperature:      0.7,
		MaxOutputTokens:  4096,
		ResponseMIMEType: "application/json",
	}
}

func TestGeminiClientSendsGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1beta/models/gemini-2.5-flash:generateContent" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "secret" {
			t.Errorf("api key header=%q", got)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gen := body["generationConfig"].(map[string]any)
		if gen["temperature"].(float64) < 0.69 || gen["maxOutputTokens"].(float64) != 4096 || gen["responseMimeType"] != "application/json" {
			t.Errorf("unexpected generationConfig: %v", gen)
		}
		text := body["contents"].([]any)[0].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"]
		if text != "system\n\nuser" {
			t.Errorf("unexpected text: %v", text)
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]}}],"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":34}}`)
	}))
	defer srv.Close()

	usage := &recordedUsage{}
	c := NewGeminiClient("gemini", config.ProviderConfig{BaseURL: srv.URL + "/"}, srv.Client(), usage)
	got, err := c.Generate(context.Background(), testRequest(), "secret")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
	if usage.n != 1 || usage.last.Status != "success" || usage.last.PromptTokens != 12 || usage.last.CompletionTokens != 34 {
		t.Fatalf("unexpected usage: %+v", usage.last)
	}
}

func TestGeminiClientErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "http error", status: http.StatusBadRequest, body: `{"error":{"message":"API key not valid"}}`, want: "API key not valid"},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates":[]}`, want: "no candidates"},
		{name: "blocked", status: http.StatusOK, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`, want: "SAFETY"},
		{name: "empty parts", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[]},"finishReason":"MAX_TOKENS"}]}`, want: "MAX_TOKENS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			usage := &recordedUsage{}
			c := NewGeminiClient("gemini", config.ProviderConfig{BaseURL: srv.URL}, srv.Client(), usage)
			_, err := c.Generate(context.Background(), testRequest(), "k")
			var ue *port.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if !strings.Contains(ue.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", ue.Error(), tc.want)
			}
			if usage.last.Status != "error" {
				t.Fatalf("usage status=%q", usage.last.Status)
			}
		})
	}
}

func TestGeminiClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewGeminiClient("gemini", config.ProviderConfig{BaseURL: url}, nil, nil)
	_, err := c.Generate(context.Background(), testRequest(), "k")
	var ue *port.UpstreamError
	if !errors.As(err, &ue) || ue.Err == nil {
		t.Fatalf("expected transport UpstreamError, got %v", err)
	}
}
