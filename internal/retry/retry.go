package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/coverletter/internal/model"
)

// DefaultDelay is the fixed wait before retrying a rate-limited call.
const DefaultDelay = 30 * time.Second

// RetryProvider is a decorator that retries rate-limited (HTTP 429) completions
// after a fixed delay. Every other error is returned immediately.
type RetryProvider struct {
	inner      model.LLMProvider
	maxRetries int
	delay      time.Duration
	logger     *slog.Logger
}

// NewRetryProvider wraps an LLMProvider with retry logic.
// maxRetries is the number of additional attempts after a 429 (default: 1).
// delay is the fixed wait before each retry (default: 30s).
func NewRetryProvider(inner model.LLMProvider, maxRetries int, delay time.Duration, logger *slog.Logger) *RetryProvider {
	return &RetryProvider{
		inner:      inner,
		maxRetries: maxRetries,
		delay:      delay,
		logger:     logger,
	}
}

// Complete attempts the call, sleeping and retrying while the upstream reports 429.
func (p *RetryProvider) Complete(ctx context.Context, prompt model.Prompt) (string, error) {
	text, err := p.inner.Complete(ctx, prompt)
	if err == nil {
		return text, nil
	}
	if !model.IsRateLimited(err) {
		return "", err
	}

	lastErr := err
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		p.logger.Warn("rate limited, retrying after fixed delay",
			"attempt", attempt,
			"max_retries", p.maxRetries,
			"delay", p.delay,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(p.delay):
		}

		text, err = p.inner.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !model.IsRateLimited(err) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w after %d attempts: %w", model.ErrRetriesExhausted, p.maxRetries+1, lastErr)
}
