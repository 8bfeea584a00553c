// Package sources aggregates per-topic content from news search and social
// discussion pages into short spoken summaries.
package sources

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies a source of topic content.
type Kind string

const (
	KindNews   Kind = "news"
	KindSocial Kind = "reddit"
)

// Result maps each requested topic to its summary or a sentinel message.
type Result map[string]string

// Bundle is the input to script synthesis. Either half may be nil when the
// source kind was not requested.
type Bundle struct {
	News   Result
	Social Result
}

// Empty reports whether neither source produced a result.
func (b Bundle) Empty() bool {
	return len(b.News) == 0 && len(b.Social) == 0
}

// Aggregator produces one Result for a list of topics.
// Implementations contain per-topic failures as sentinel entries; an error
// means the whole source kind is unusable.
type Aggregator interface {
	Kind() Kind
	Aggregate(ctx context.Context, topics []string) (Result, error)
}

// ErrSourceUnavailable marks a source kind that failed as a whole.
var ErrSourceUnavailable = errors.New("source unavailable")

// SourceError wraps an aggregator failure with its kind.
type SourceError struct {
	Kind Kind
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source: %v", e.Kind, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSourceUnavailable, e.Err}
}

// UnavailableResult is the all-topics sentinel result substituted for a
// source kind that failed as a whole.
func UnavailableResult(kind Kind, topics []string) Result {
	res := make(Result, len(topics))
	for _, t := range topics {
		res[t] = unavailableMessage(kind, t)
	}
	return res
}
