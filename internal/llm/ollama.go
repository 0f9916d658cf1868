package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaProvider implements Provider against a local Ollama server through
// langchaingo. Local models have no native schema support, so a requested
// schema is sent as JSON mode plus schema instructions in the system prompt,
// and the reply is validated here.
type OllamaProvider struct {
	model llms.Model
	name  string
}

// NewOllamaProvider creates a provider for the configured Ollama model.
func NewOllamaProvider(cfg OllamaConfig) (*OllamaProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}
	m, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create Ollama client: %w", err)
	}
	return newOllamaProvider(m, cfg.Model), nil
}

func newOllamaProvider(m llms.Model, name string) *OllamaProvider {
	return &OllamaProvider{model: m, name: name}
}

func (p *OllamaProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	opts := []llms.CallOption{}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	if req.Schema != nil {
		opts = append(opts, llms.WithJSONMode())
	}

	out, err := p.model.GenerateContent(ctx, buildOllamaMessages(req), opts...)
	if err != nil {
		return nil, mapOllamaError(err)
	}
	if len(out.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in Ollama response")}
	}

	choice := out.Choices[0]
	return finish(req, &Response{
		Content:    json.RawMessage(strings.TrimSpace(choice.Content)),
		Usage:      ollamaUsage(choice.GenerationInfo),
		Model:      p.name,
		StopReason: mapOllamaStopReason(choice.StopReason),
	})
}

func (p *OllamaProvider) ModelID() string {
	return p.name
}

func buildOllamaMessages(req Request) []llms.MessageContent {
	var out []llms.MessageContent

	system := req.System
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			system = strings.TrimSpace(system + "\n\nRespond with a single JSON object matching this JSON Schema:\n" + string(def))
		}
	}
	if system != "" {
		out = append(out, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}

	for _, m := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		out = append(out, llms.TextParts(role, m.Content))
	}
	return out
}

func ollamaUsage(info map[string]any) Usage {
	in := intFrom(info["PromptTokens"])
	out := intFrom(info["CompletionTokens"])
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

func intFrom(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func mapOllamaStopReason(reason string) string {
	switch reason {
	case "length":
		return "max_tokens"
	default:
		return "end"
	}
}

func mapOllamaError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ErrProviderUnavailable{Err: err}
	}
	if strings.Contains(err.Error(), "429") {
		return &ErrRateLimit{Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}
