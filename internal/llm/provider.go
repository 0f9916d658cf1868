package llm

import (
	"context"
	"encoding/json"
)

// Provider generates text or structured JSON from a prompt.
type Provider interface {
	// Generate sends a prompt to the model. When req.Schema is set the
	// provider uses its native structured output mechanism and Content is
	// validated JSON; otherwise Content is the raw model text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Question generation and weak-topic
	// analysis are single turn and send one user message.
	Messages []Message

	// Schema, when set, requests native structured output.
	Schema *Schema

	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0. Zero leaves the
	// provider default in place.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema, e.g. "quiz-question". Kebab-case.
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is the validated JSON object when a Schema was requested,
	// the raw response text otherwise.
	Content json.RawMessage

	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string

	// Cached is set when the response was served from the response cache.
	Cached bool
}

// Text returns Content as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
