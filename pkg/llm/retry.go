package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/RobinCoderZhao/newsninja/pkg/retry"
)

// retryClient wraps any Client with retry logic.
type retryClient struct {
	inner  Client
	policy retry.Policy
}

// wrapWithRetry wraps a client with retry logic.
func wrapWithRetry(client Client, maxRetries int) Client {
	if maxRetries <= 1 {
		return client
	}
	return &retryClient{
		inner: client,
		policy: retry.Policy{
			Attempts:  maxRetries,
			BaseDelay: 500 * time.Millisecond,
			MaxDelay:  30 * time.Second,
			Retryable: isRetryableError,
		},
	}
}

func (r *retryClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	var resp *Response
	err := retry.Do(ctx, r.policy, func(ctx context.Context, attempt int) error {
		var err error
		resp, err = r.inner.Generate(ctx, req)
		if err != nil && attempt+1 < r.policy.Attempts && isRetryableError(err) {
			slog.Warn("LLM request failed, retrying",
				"provider", r.inner.Provider(),
				"attempt", attempt+1,
				"max_retries", r.policy.Attempts,
				"error", err,
			)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *retryClient) Provider() Provider {
	return r.inner.Provider()
}

func (r *retryClient) Close() error {
	return r.inner.Close()
}
