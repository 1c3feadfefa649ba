package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider caps how often the chatbot calls its
// text-generation collaborator. A token bucket refills continuously at
// rpm requests per minute; callers over the budget block until a token
// frees up or their context ends.
type RateLimitedProvider struct {
	provider   Provider
	rpm        int
	mu         sync.Mutex
	tokens     int
	lastRefill time.Time
}

// NewRateLimitedProvider wraps provider with an rpm requests-per-minute
// cap. The bucket starts full, so a burst up to rpm goes through
// immediately.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	return &RateLimitedProvider{
		provider:   provider,
		rpm:        rpm,
		tokens:     rpm,
		lastRefill: time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

// acquire takes one token, blocking until the bucket refills.
func (r *RateLimitedProvider) acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()

		refill := int(now.Sub(r.lastRefill).Seconds() * float64(r.rpm) / 60.0)
		if refill > 0 {
			r.tokens += refill
			if r.tokens > r.rpm {
				r.tokens = r.rpm
			}
			r.lastRefill = now
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
