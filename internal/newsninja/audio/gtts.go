package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxChunkRunes is the longest text the translate TTS endpoint accepts per request.
const maxChunkRunes = 100

// GTTSConfig configures the Google Translate TTS client.
type GTTSConfig struct {
	BaseURL string
	Lang    string
	Timeout time.Duration
}

// GTTS is the free fallback provider. It needs no credentials.
type GTTS struct {
	cfg  GTTSConfig
	http *http.Client
}

// NewGTTS creates the client.
func NewGTTS(cfg GTTSConfig) *GTTS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://translate.google.com"
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &GTTS{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Name implements Provider.
func (g *GTTS) Name() string { return "gtts" }

// Synthesize fetches each chunk of text in order and appends the MP3 frames to w.
func (g *GTTS) Synthesize(ctx context.Context, text string, w io.Writer) error {
	chunks := splitChunks(text, maxChunkRunes)
	if len(chunks) == 0 {
		return errors.New("no text to speak")
	}
	for i, chunk := range chunks {
		if err := g.fetchChunk(ctx, chunk, i, len(chunks), w); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (g *GTTS) fetchChunk(ctx context.Context, chunk string, idx, total int, w io.Writer) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", g.cfg.Lang)
	q.Set("client", "tw-ob")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(len([]rune(chunk))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; NewsNinja)")
	req.Header.Set("Referer", g.cfg.BaseURL+"/")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("translate_tts returned %d", resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// splitChunks breaks text on whitespace into pieces of at most max runes.
// Words longer than max are cut.
func splitChunks(text string, max int) []string {
	var (
		chunks []string
		cur    []rune
	)
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
	}
	for _, word := range strings.Fields(text) {
		wr := []rune(word)
		for len(wr) > max {
			flush()
			chunks = append(chunks, string(wr[:max]))
			wr = wr[max:]
		}
		if len(cur) > 0 && len(cur)+1+len(wr) > max {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, wr...)
	}
	flush()
	return chunks
}
