package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/RobinCoderZhao/newsninja/pkg/scraper"
)

// NewsSearchURL returns the Google News search page for topic, newest first.
func NewsSearchURL(topic string) string {
	return "https://news.google.com/search?q=" + url.QueryEscape(topic) + "&tbs=sbd:1"
}

// NewsAggregator summarizes Google News headlines per topic.
type NewsAggregator struct {
	fetcher    scraper.Fetcher
	summarizer Summarizer
	runner     topicRunner
}

// NewNewsAggregator creates a news aggregator. limiter should be the
// process-wide news limiter.
func NewNewsAggregator(fetcher scraper.Fetcher, summarizer Summarizer, limiter *Limiter, opts Options) *NewsAggregator {
	return &NewsAggregator{
		fetcher:    fetcher,
		summarizer: summarizer,
		runner:     newTopicRunner(KindNews, limiter, opts),
	}
}

// Kind implements Aggregator.
func (a *NewsAggregator) Kind() Kind { return KindNews }

// Aggregate implements Aggregator.
func (a *NewsAggregator) Aggregate(ctx context.Context, topics []string) (Result, error) {
	return a.runner.run(ctx, topics, a.topic), nil
}

func (a *NewsAggregator) topic(ctx context.Context, topic string) (string, error) {
	page, err := a.fetcher.Fetch(ctx, NewsSearchURL(topic))
	if err != nil {
		return "", err
	}
	headlines := ExtractHeadlines(page)
	if strings.TrimSpace(headlines) == "" {
		return noContentMessage(KindNews, topic), nil
	}
	summary, err := a.summarizer.SummarizeNews(ctx, topic, headlines)
	if err != nil {
		return "", fmt.Errorf("news %q: %w", topic, err)
	}
	return summary, nil
}
