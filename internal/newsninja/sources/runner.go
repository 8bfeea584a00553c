package sources

import (
	"context"
	"log/slog"
	"time"

	"github.com/RobinCoderZhao/newsninja/pkg/retry"
)

// Options tune how an aggregator walks its topics.
type Options struct {
	// TopicDelay is the pause between consecutive topics.
	TopicDelay time.Duration
	// Retry wraps the whole fetch, extract and summarize sequence of one topic.
	Retry  retry.Policy
	Logger *slog.Logger
}

// DefaultOptions returns 3 attempts with 2s..10s backoff and a 1s topic delay.
func DefaultOptions() Options {
	return Options{
		TopicDelay: time.Second,
		Retry: retry.Policy{
			Attempts:  3,
			BaseDelay: 2 * time.Second,
			MaxDelay:  10 * time.Second,
		},
	}
}

// topicRunner applies admission, retry and pacing around a per-topic step.
type topicRunner struct {
	kind    Kind
	limiter *Limiter
	opts    Options
	logger  *slog.Logger
}

func newTopicRunner(kind Kind, limiter *Limiter, opts Options) topicRunner {
	if limiter == nil {
		limiter = NewLimiter(DefaultAdmitEvery)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return topicRunner{
		kind:    kind,
		limiter: limiter,
		opts:    opts,
		logger:  logger.With("source", string(kind)),
	}
}

// run calls step for every topic in order. A topic whose step still fails
// after all attempts gets the fetch-failed sentinel; the rest carry on.
func (r topicRunner) run(ctx context.Context, topics []string, step func(ctx context.Context, topic string) (string, error)) Result {
	res := make(Result, len(topics))
	for i, topic := range topics {
		if i > 0 && r.opts.TopicDelay > 0 {
			sleep(ctx, r.opts.TopicDelay)
		}

		var summary string
		err := retry.Do(ctx, r.opts.Retry, func(ctx context.Context, attempt int) error {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
			out, err := step(ctx, topic)
			if err != nil {
				r.logger.Debug("topic attempt failed", "topic", topic, "attempt", attempt+1, "error", err)
				return err
			}
			summary = out
			return nil
		})
		if err != nil {
			r.logger.Warn("topic failed", "topic", topic, "error", err)
			res[topic] = fetchFailedMessage(r.kind, topic)
			continue
		}
		res[topic] = summary
	}
	return res
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
