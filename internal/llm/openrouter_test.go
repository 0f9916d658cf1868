package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "google/gemini-2.0-flash-exp",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "google/gemini-2.0-flash-exp" {
			t.Errorf("model = %q, want %q", p.ModelID(), "google/gemini-2.0-flash-exp")
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		})
		if err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("default base URL", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "meta-llama/llama-3-8b",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The provider should be created successfully with default base URL.
		if p == nil {
			t.Fatal("expected non-nil provider")
		}
	})

	t.Run("custom model pass-through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "anthropic/claude-3-haiku",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Model ID should be used as-is (no friendly-name mapping).
		if p.ModelID() != "anthropic/claude-3-haiku" {
			t.Errorf("model = %q, want %q", p.ModelID(), "anthropic/claude-3-haiku")
		}
	})

	t.Run("custom base URL", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey:  "sk-or-test",
			Model:   "google/gemini-2.0-flash-exp",
			BaseURL: "https://custom.openrouter.example/v1",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p == nil {
			t.Fatal("expected non-nil provider")
		}
	})
}

func TestOpenRouterProvider_SendsAttributionHeaders(t *testing.T) {
	var title, referer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("X-Title")
		referer = r.Header.Get("HTTP-Referer")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "gen-1",
			"model": "meta-llama/llama-3-8b",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]any{"role": "assistant", "content": "ok"}, "finish_reason": "stop"},
			},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "meta-llama/llama-3-8b", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}, MaxTokens: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "ok" {
		t.Errorf("content = %q", resp.Text())
	}
	if title != "quizdeck" || referer == "" {
		t.Errorf("attribution headers = %q, %q", title, referer)
	}
}
