package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ElevenLabsConfig configures the ElevenLabs streaming TTS client.
type ElevenLabsConfig struct {
	BaseURL      string
	APIKey       string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Timeout      time.Duration
}

// ElevenLabs is the primary, paid TTS provider.
type ElevenLabs struct {
	cfg  ElevenLabsConfig
	http *http.Client
}

// NewElevenLabs creates the client, filling unset fields with the defaults
// used by NewsNinja.
func NewElevenLabs(cfg ElevenLabsConfig) *ElevenLabs {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = "JBFqnCBsd6RMkjVDRZzb"
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ElevenLabs{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// Name implements Provider.
func (e *ElevenLabs) Name() string { return "elevenlabs" }

type elevenRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize streams the generated audio into w.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string, w io.Writer) error {
	if e.cfg.APIKey == "" {
		return errors.New("ElevenLabs API key is required")
	}

	body, err := json.Marshal(elevenRequest{Text: text, ModelID: e.cfg.ModelID})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s/stream?output_format=%s",
		e.cfg.BaseURL, url.PathEscape(e.cfg.VoiceID), url.QueryEscape(e.cfg.OutputFormat))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", e.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", MediaType)

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ElevenLabs API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("stream audio: %w", err)
	}
	return nil
}
