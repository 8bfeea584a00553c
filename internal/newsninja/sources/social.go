package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RobinCoderZhao/newsninja/pkg/scraper"
)

// maxPosts caps how many discussion titles go into one summary prompt.
const maxPosts = 25

// SocialSearchURL returns the Reddit search page for topic, newest posts
// from the past week.
func SocialSearchURL(topic string) string {
	return "https://www.reddit.com/search/?q=" + url.QueryEscape(topic) + "&sort=new&t=week"
}

// Post is one discussion thread found on a search page.
type Post struct {
	Title     string
	Community string
	URL       string
	Comments  int
	Score     int
}

var titleAnchorSelectors = []string{
	`a[data-testid="post-title-text"]`,
	`a[data-testid="post-title"]`,
	`a[slot="title"]`,
	`a[id^="post-title"]`,
}

// ParsePosts extracts discussion posts from a Reddit search page. It reads
// shreddit-post elements first, then post-title anchors, and finally falls
// back to the generic headline extractor.
func ParsePosts(page string) []Post {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return headlinePosts(page)
	}

	seen := make(map[string]bool)
	var posts []Post
	add := func(p Post) {
		p.Title = strings.Join(strings.Fields(p.Title), " ")
		if p.Title == "" || seen[p.Title] || len(posts) >= maxPosts {
			return
		}
		seen[p.Title] = true
		posts = append(posts, p)
	}

	doc.Find("shreddit-post[post-title]").Each(func(_ int, s *goquery.Selection) {
		add(Post{
			Title:     s.AttrOr("post-title", ""),
			Community: s.AttrOr("subreddit-prefixed-name", ""),
			URL:       s.AttrOr("permalink", ""),
			Comments:  atoi(s.AttrOr("comment-count", "")),
			Score:     atoi(s.AttrOr("score", "")),
		})
	})
	if len(posts) > 0 {
		return posts
	}

	for _, sel := range titleAnchorSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			add(Post{Title: s.Text(), URL: s.AttrOr("href", "")})
		})
		if len(posts) > 0 {
			return posts
		}
	}

	return headlinePosts(page)
}

func headlinePosts(page string) []Post {
	lines := HeadlineLines(scraper.TextLines(page))
	if len(lines) > maxPosts {
		lines = lines[:maxPosts]
	}
	posts := make([]Post, 0, len(lines))
	for _, l := range lines {
		posts = append(posts, Post{Title: l})
	}
	return posts
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// SocialAggregator summarizes Reddit discussions per topic.
type SocialAggregator struct {
	fetcher    scraper.Fetcher
	summarizer Summarizer
	runner     topicRunner
}

// NewSocialAggregator creates a social aggregator. limiter should be the
// process-wide social limiter.
func NewSocialAggregator(fetcher scraper.Fetcher, summarizer Summarizer, limiter *Limiter, opts Options) *SocialAggregator {
	return &SocialAggregator{
		fetcher:    fetcher,
		summarizer: summarizer,
		runner:     newTopicRunner(KindSocial, limiter, opts),
	}
}

// Kind implements Aggregator.
func (a *SocialAggregator) Kind() Kind { return KindSocial }

// Aggregate implements Aggregator.
func (a *SocialAggregator) Aggregate(ctx context.Context, topics []string) (Result, error) {
	return a.runner.run(ctx, topics, a.topic), nil
}

func (a *SocialAggregator) topic(ctx context.Context, topic string) (string, error) {
	page, err := a.fetcher.Fetch(ctx, SocialSearchURL(topic))
	if err != nil {
		return "", err
	}
	posts := ParsePosts(page)
	if len(posts) == 0 {
		return noContentMessage(KindSocial, topic), nil
	}
	summary, err := a.summarizer.SummarizeDiscussions(ctx, topic, posts)
	if err != nil {
		return "", fmt.Errorf("discussions %q: %w", topic, err)
	}
	return summary, nil
}
