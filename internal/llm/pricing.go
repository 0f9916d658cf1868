package llm

import (
	"regexp"
	"strings"
)

// ModelCost holds per-million-token pricing for a model in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

var dateSuffix = regexp.MustCompile(`-(\d{8}|\d{4}-\d{2}-\d{2})$`)

// LookupCost returns the pricing for a model ID, or nil if unknown.
// OpenRouter vendor prefixes ("anthropic/...") and release date suffixes
// are ignored. Local ollama models (name:tag) cost nothing.
func LookupCost(modelID string) *ModelCost {
	id := strings.ToLower(strings.TrimSpace(modelID))
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if strings.Contains(id, ":") {
		return &ModelCost{}
	}

	for _, candidate := range []string{id, dateSuffix.ReplaceAllString(id, "")} {
		if c, ok := modelCosts[candidate]; ok {
			return &c
		}
	}
	return nil
}

// modelCosts lists the models quizdeck is typically configured with.
// Prices from models.dev, 2026-02.
var modelCosts = map[string]ModelCost{
	// Anthropic
	"claude-3-5-haiku":  {0.8, 4},
	"claude-3-7-sonnet": {3, 15},
	"claude-haiku-4-5":  {1, 5},
	"claude-sonnet-4-0": {3, 15},
	"claude-sonnet-4":   {3, 15},
	"claude-sonnet-4-5": {3, 15},
	"claude-opus-4-1":   {15, 75},
	"claude-opus-4-5":   {5, 25},

	// OpenAI
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-5":        {1.25, 10},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5-nano":   {0.05, 0.4},
	"o3-mini":      {1.1, 4.4},
	"o4-mini":      {1.1, 4.4},

	// Google
	"gemini-2.0-flash":       {0.1, 0.4},
	"gemini-2.5-flash":       {0.3, 2.5},
	"gemini-2.5-flash-lite":  {0.1, 0.4},
	"gemini-2.5-pro":         {1.25, 10},
	"gemini-3-flash-preview": {0.5, 3},
	"gemini-3-pro-preview":   {2, 12},

	// Open weights served through OpenRouter
	"llama-3.3-70b-instruct": {0.13, 0.4},
	"qwen3-32b":              {0.1, 0.3},
	"deepseek-chat-v3.1":     {0.27, 1.1},
}
