// Package scraper provides raw page fetching through a web-unlocker service
// and HTML to plain-text conversion.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultUnlockerEndpoint is the BrightData direct-request API.
const DefaultUnlockerEndpoint = "https://api.brightdata.com/request"

// Fetcher retrieves the raw markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetchError reports a failed fetch together with the upstream status, if any.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Message    string
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
	}
	return fmt.Sprintf("fetch %s: upstream returned %d: %s", e.URL, e.StatusCode, e.Message)
}

// UnlockerConfig configures the web-unlocker client.
type UnlockerConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Zone     string        `yaml:"zone"`
	Timeout  time.Duration `yaml:"timeout"`
}

// UnlockerFetcher fetches pages through the BrightData web-unlocker API, which
// renders the target page and returns its raw HTML.
type UnlockerFetcher struct {
	cfg    UnlockerConfig
	client *http.Client
}

// NewUnlockerFetcher creates a fetcher for the given unlocker zone.
func NewUnlockerFetcher(cfg UnlockerConfig) *UnlockerFetcher {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultUnlockerEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &UnlockerFetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type unlockerRequest struct {
	Zone   string `json:"zone"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Fetch asks the unlocker for the raw markup of url.
func (f *UnlockerFetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := json.Marshal(unlockerRequest{Zone: f.cfg.Zone, URL: url, Format: "raw"})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Message: "read body: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > 300 {
			msg = msg[:300] + "..."
		}
		if msg == "" {
			msg = resp.Status
		}
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode, Message: msg}
	}

	return string(data), nil
}
