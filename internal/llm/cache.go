package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/cache"
	"github.com/abhisek/quizdeck/internal/logger"
)

const cacheKeyPrefix = "llm:"

// CachingProvider is a decorator that serves repeated requests from a
// response cache. Only successful responses are stored. Cache failures are
// logged and never fail the request.
type CachingProvider struct {
	inner Provider
	store cache.Cache
	ttl   time.Duration
}

// WithCache wraps a Provider with a response cache.
func WithCache(p Provider, c cache.Cache, ttl time.Duration) Provider {
	return &CachingProvider{inner: p, store: c, ttl: ttl}
}

// cachedResponse keeps Content as a string since replies to requests
// without a schema are plain text, not JSON.
type cachedResponse struct {
	Content    string `json:"content"`
	Usage      Usage  `json:"usage"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
}

func (c *CachingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	key := CacheKey(c.inner.ModelID(), req)

	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var cr cachedResponse
		if jerr := json.Unmarshal([]byte(raw), &cr); jerr == nil {
			return &Response{
				Content:    json.RawMessage(cr.Content),
				Usage:      cr.Usage,
				Model:      cr.Model,
				StopReason: cr.StopReason,
				Cached:     true,
			}, nil
		}
		logger.Get().Warn("discarding undecodable cached LLM response", zap.String("key", key))
		_ = c.store.Delete(ctx, key)
	case !errors.Is(err, cache.ErrCacheMiss):
		logger.Get().Warn("LLM cache read failed", zap.String("key", key), zap.Error(err))
	}

	resp, err := c.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(cachedResponse{
		Content:    string(resp.Content),
		Usage:      resp.Usage,
		Model:      resp.Model,
		StopReason: resp.StopReason,
	})
	if err == nil {
		err = c.store.Set(ctx, key, string(data), c.ttl)
	}
	if err != nil {
		logger.Get().Warn("LLM cache write failed", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}

func (c *CachingProvider) ModelID() string {
	return c.inner.ModelID()
}

// CacheKey derives the cache key for a request sent to model. Requests
// that differ in prompt, schema or sampling settings never share a key.
func CacheKey(model string, req Request) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(model)
	_ = enc.Encode(req.System)
	_ = enc.Encode(req.Messages)
	if req.Schema != nil {
		_ = enc.Encode(req.Schema.Name)
		_ = enc.Encode(req.Schema.Definition)
	}
	_ = enc.Encode(req.MaxTokens)
	_ = enc.Encode(req.Temperature)
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}
