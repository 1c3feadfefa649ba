package llm

import (
	"context"
	"errors"
	"log"
	"time"
)

// RetryProvider wraps a Provider and retries a failed call exactly once.
// Collaborator failures are treated as transient; callers that still get an
// error after the retry are expected to degrade to a deterministic fallback
// rather than surface the error to the user.
type RetryProvider struct {
	provider Provider
	timeout  time.Duration
}

// NewRetryProvider wraps the given provider. timeout bounds each attempt;
// zero uses a 30s default.
func NewRetryProvider(provider Provider, timeout time.Duration) *RetryProvider {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &RetryProvider{provider: provider, timeout: timeout}
}

func (r *RetryProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := r.attempt(ctx, req)
	if err == nil {
		return resp, nil
	}

	// Do not retry when the caller itself is gone.
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return nil, err
	}

	log.Printf("llm: %s call failed, retrying once: %v", r.provider.Name(), err)
	return r.attempt(ctx, req)
}

func (r *RetryProvider) attempt(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.provider.Complete(attemptCtx, req)
}
