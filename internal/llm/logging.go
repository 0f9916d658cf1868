package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/logger"
	"github.com/abhisek/quizdeck/internal/store"
)

// LoggingProvider is a decorator that records every request in the event
// log and emits a structured log line per call.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging. name is the provider
// name recorded with each event ("anthropic", "ollama", ...). A nil repo
// keeps the log lines and skips persistence.
func WithLogging(p Provider, name string, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, provider: name, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Cached = resp.Cached
		data.ResponseBody = string(resp.Content)
		if resp.Model != "" {
			data.Model = resp.Model
		}
	}

	log := logger.Get().With(
		zap.String("provider", data.Provider),
		zap.String("model", data.Model),
		zap.String("purpose", purpose),
		zap.Int64("latency_ms", data.LatencyMs),
	)
	if topic := TopicFrom(ctx); topic != "" {
		log = log.With(zap.String("topic", topic))
	}
	if err != nil {
		data.ErrorMessage = err.Error()
		log.Warn("LLM request failed", zap.Error(err))
	} else {
		log.Debug("LLM request",
			zap.Int("input_tokens", data.InputTokens),
			zap.Int("output_tokens", data.OutputTokens),
			zap.Bool("cached", data.Cached))
	}

	if l.eventRepo != nil {
		// Event log failures never fail the request.
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			log.Warn("failed to record LLM request event", zap.Error(logErr))
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the request for
// the event log.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
