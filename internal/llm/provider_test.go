package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	if topic := TopicFrom(ctx); topic != "" {
		t.Fatalf("expected no topic, got %q", topic)
	}

	ctx = WithTopic(WithPurpose(ctx, "question-gen"), "Recursion")
	if p := PurposeFrom(ctx); p != "question-gen" {
		t.Fatalf("expected 'question-gen', got %q", p)
	}
	if topic := TopicFrom(ctx); topic != "Recursion" {
		t.Fatalf("expected 'Recursion', got %q", topic)
	}

	// Overriding the purpose keeps the topic.
	ctx = WithPurpose(ctx, "analysis")
	if topic := TopicFrom(ctx); topic != "Recursion" {
		t.Fatalf("expected topic to survive purpose change, got %q", topic)
	}
}

func TestStatusError(t *testing.T) {
	base := errors.New("boom")
	h := http.Header{}
	h.Set("Retry-After", "7")

	var auth *ErrAuth
	if !errors.As(statusError(http.StatusForbidden, nil, base), &auth) {
		t.Fatal("403 should map to ErrAuth")
	}
	var rl *ErrRateLimit
	if !errors.As(statusError(http.StatusTooManyRequests, h, base), &rl) {
		t.Fatal("429 should map to ErrRateLimit")
	}
	if rl.RetryAfter != 7*time.Second {
		t.Fatalf("expected 7s retry-after, got %v", rl.RetryAfter)
	}
	var unavailable *ErrProviderUnavailable
	if !errors.As(statusError(http.StatusBadGateway, nil, base), &unavailable) {
		t.Fatal("502 should map to ErrProviderUnavailable")
	}
	if !errors.Is(statusError(http.StatusBadGateway, nil, base), base) {
		t.Fatal("mapped errors should wrap the cause")
	}
}

func TestConfig_Validate(t *testing.T) {
	with := func(mutate func(*Config)) Config {
		cfg := DefaultConfig()
		mutate(&cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", with(func(c *Config) {}), true},
		{"anthropic with key", with(func(c *Config) { c.Anthropic.APIKey = "sk-test" }), false},
		{"openai without key", with(func(c *Config) { c.Provider = "openai" }), true},
		{"openai with key", with(func(c *Config) { c.Provider = "openai"; c.OpenAI.APIKey = "sk-test" }), false},
		{"ollama needs only a model", with(func(c *Config) { c.Provider = "ollama" }), false},
		{"ollama without model", with(func(c *Config) { c.Provider = "ollama"; c.Ollama.Model = "" }), true},
		{"mock needs no key", with(func(c *Config) { c.Provider = "mock" }), false},
		{"unknown provider", with(func(c *Config) { c.Provider = "unknown" }), true},
		{"zero attempts", with(func(c *Config) { c.Provider = "mock"; c.Retry.MaxAttempts = 0 }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "sk-ant" {
		t.Fatalf("unexpected discovery: %+v", cfg)
	}
	if cfg.Retry.MaxAttempts != 1 {
		t.Fatalf("expected retries off by default, got %d attempts", cfg.Retry.MaxAttempts)
	}
}
