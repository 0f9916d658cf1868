package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// openaiModels maps friendly names to OpenAI model IDs.
var openaiModels = map[string]string{
	"gpt-4o":       "gpt-4o",
	"gpt-4o-mini":  "gpt-4o-mini",
	"gpt-4.1-mini": "gpt-4.1-mini",
}

// OpenAIProvider implements Provider using the OpenAI SDK.
// It also serves OpenRouter and other OpenAI-compatible APIs via BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string

	// strict toggles strict JSON schema mode. OpenAI-compatible gateways
	// often reject it.
	strict bool
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return newOpenAIProviderRaw(config, resolveModel(cfg.Model, openaiModels), cfg.BaseURL == ""), nil
}

func newOpenAIProviderRaw(config openai.ClientConfig, model string, strict bool) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
		strict: strict,
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq, err := p.chatRequest(req)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("no choices in OpenAI response"),
		}
	}

	choice := resp.Choices[0]
	return finish(req, &Response{
		Content: json.RawMessage(choice.Message.Content),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: mapOpenAIStopReason(choice.FinishReason),
	})
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

// chatRequest builds the completion call. The system prompt goes first
// as a system message.
func (p *OpenAIProvider) chatRequest(req Request) (openai.ChatCompletionRequest, error) {
	out := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out.Messages = append(out.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	if req.Schema == nil {
		return out, nil
	}
	def, err := json.Marshal(req.Schema.Definition)
	if err != nil {
		return out, fmt.Errorf("marshal schema %q: %w", req.Schema.Name, err)
	}
	out.ResponseFormat = &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
		JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
			Name:   req.Schema.Name,
			Schema: json.RawMessage(def),
			Strict: p.strict,
		},
	}
	return out, nil
}

func mapOpenAIStopReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonStop:
		return "end"
	case openai.FinishReasonLength:
		return "max_tokens"
	case openai.FinishReasonContentFilter:
		return "error"
	default:
		return "end"
	}
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, nil, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, nil, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
