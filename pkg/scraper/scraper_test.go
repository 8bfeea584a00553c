package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_OneLinePerTextNode(t *testing.T) {
	page := `<html><head><title>Google News</title></head><body>
		<article><h3>Rates held steady</h3><span>Reuters</span><a>More</a></article>
		<article><h3>Chip exports rise</h3></article>
	</body></html>`

	assert.Equal(t, []string{"Rates held steady", "Reuters", "More", "Chip exports rise"}, TextLines(page))
}

func TestExtractText_RemovesScripts(t *testing.T) {
	page := `<html><body><script>alert('xss')</script><p>Content</p><style>.foo{}</style><noscript>enable js</noscript></body></html>`
	assert.Equal(t, "Content", ExtractText(page))
}

func TestExtractText_PlainTextPassesThrough(t *testing.T) {
	plain := "First line\n\n   Second line  \nThird"
	assert.Equal(t, "First line\nSecond line\nThird", ExtractText(plain))
	assert.Equal(t, ExtractText(plain), ExtractText(ExtractText(plain)))
}

func TestExtractText_Empty(t *testing.T) {
	assert.Empty(t, ExtractText(""))
	assert.Empty(t, TextLines("   \n  "))
}

func TestUnlockerFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer bd-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req unlockerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "news_zone", req.Zone)
		assert.Equal(t, "https://news.google.com/search?q=go", req.URL)
		assert.Equal(t, "raw", req.Format)

		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	f := NewUnlockerFetcher(UnlockerConfig{Endpoint: server.URL, APIKey: "bd-key", Zone: "news_zone"})
	body, err := f.Fetch(context.Background(), "https://news.google.com/search?q=go")
	require.NoError(t, err)
	assert.Equal(t, "<html><body>ok</body></html>", body)
}

func TestUnlockerFetcher_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "zone not found", http.StatusUnauthorized)
	}))
	defer server.Close()

	f := NewUnlockerFetcher(UnlockerConfig{Endpoint: server.URL, APIKey: "bad", Zone: "z"})
	_, err := f.Fetch(context.Background(), "https://example.com")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.Message, "zone not found")
}

func TestUnlockerFetcher_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	f := NewUnlockerFetcher(UnlockerConfig{Endpoint: endpoint})
	_, err := f.Fetch(context.Background(), "https://example.com")

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.StatusCode)
}
