package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/logger"
)

const jitterFraction = 0.2

// RetryProvider retries transient failures of the wrapped provider with
// exponential backoff. A schema-invalid reply is retried at most once.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p. With MaxAttempts <= 1 p is returned as is.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts <= 1 {
		return p
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		err         error
		resp        *Response
		invalidSeen bool
	)
	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := r.backoff(attempt-1, err)
			logger.Get().Debug("retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait),
				zap.Error(err))
			if werr := sleep(ctx, wait); werr != nil {
				return nil, werr
			}
		}

		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		var invalid *ErrInvalidResponse
		if errors.As(err, &invalid) {
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}
	}
	return nil, err
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff is InitialWait * Multiplier^attempt capped at MaxWait, with
// jitter. A rate limit with Retry-After overrides it.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	base := math.Min(
		float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(attempt)),
		float64(r.config.MaxWait))
	jitter := base * jitterFraction * (2*rand.Float64() - 1)
	return time.Duration(math.Max(base+jitter, 0))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
