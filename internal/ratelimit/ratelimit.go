package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amishk599/coverletter/internal/model"
)

// Limiter enforces a minimum gap between calls sharing the same key.
// Keys are provider names for outbound calls and client addresses for inbound ones.
type Limiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time
	minDelay time.Duration
}

// NewLimiter creates a limiter that enforces minDelay between consecutive
// calls for the same key. A zero minDelay never blocks.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last call for key.
// Returns an error if the context is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	last, ok := l.lastCall[key]
	now := time.Now()

	if !ok || now.Sub(last) >= l.minDelay {
		l.lastCall[key] = now
		l.mu.Unlock()
		return nil
	}

	remaining := l.minDelay - now.Sub(last)
	// Reserve the slot so concurrent waiters queue behind this one.
	l.lastCall[key] = last.Add(l.minDelay)
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// Allow is the non-blocking form of Wait. It reports whether a call for key
// may proceed now and, if not, how long the caller should wait.
// A rejected call does not push the window forward.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	last, ok := l.lastCall[key]
	if ok {
		if elapsed := now.Sub(last); elapsed < l.minDelay {
			return false, l.minDelay - elapsed
		}
	}
	l.lastCall[key] = now
	return true, 0
}

// Prune forgets keys idle for longer than olderThan and returns how many were removed.
func (l *Limiter) Prune(olderThan time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for key, last := range l.lastCall {
		if last.Before(cutoff) {
			delete(l.lastCall, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastCall)
}

// RateLimitedProvider is a decorator that spaces out calls to the wrapped
// LLMProvider using a shared Limiter.
type RateLimitedProvider struct {
	inner   model.LLMProvider
	limiter *Limiter
	key     string
}

// NewRateLimitedProvider wraps an LLMProvider with rate limiting.
// All providers hitting the same upstream should share the same limiter and key.
func NewRateLimitedProvider(inner model.LLMProvider, limiter *Limiter, key string) *RateLimitedProvider {
	return &RateLimitedProvider{
		inner:   inner,
		limiter: limiter,
		key:     key,
	}
}

// Complete waits for the limiter, then delegates to the wrapped provider.
func (p *RateLimitedProvider) Complete(ctx context.Context, prompt model.Prompt) (string, error) {
	if err := p.limiter.Wait(ctx, p.key); err != nil {
		return "", err
	}
	return p.inner.Complete(ctx, prompt)
}
