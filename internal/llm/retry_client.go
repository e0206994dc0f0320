package llm

import (
	"context"
	"time"

	"bitebot/internal/agent/ports"
	biteboterrors "bitebot/internal/errors"
	"bitebot/internal/utils"
)

// retryClient wraps an LLM client with bounded retry on transient failures.
// Only transport-level errors are retried; the agent layer above never
// retries a turn.
type retryClient struct {
	underlying ports.LLMClient
	maxRetries int
	baseDelay  time.Duration
	logger     *utils.Logger
}

func newRetryClient(client ports.LLMClient, maxRetries int) ports.LLMClient {
	return &retryClient{
		underlying: client,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		logger:     utils.NewComponentLogger("LLMRetry"),
	}
}

func (c *retryClient) Model() string {
	return c.underlying.Model()
}

func (c *retryClient) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<(attempt-1))
			c.logger.Warn("LLM request failed (attempt %d/%d), retrying in %s: %v",
				attempt, c.maxRetries, delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		resp, err := c.underlying.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !biteboterrors.IsTransient(err) {
			return nil, err
		}
	}
	return nil, lastErr
}
