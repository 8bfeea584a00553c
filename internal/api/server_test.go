package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobinCoderZhao/newsninja/internal/newsninja/audio"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/pipeline"
)

type fakeGenerator struct {
	err        error
	panicMsg   string
	got        pipeline.Request
	usedMethod string
}

func (g *fakeGenerator) result() *pipeline.Result {
	return &pipeline.Result{Audio: []byte("ID3-audio"), MediaType: audio.MediaType, Filename: pipeline.ResponseFilename}
}

func (g *fakeGenerator) Generate(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	g.got, g.usedMethod = req, "full"
	if g.panicMsg != "" {
		panic(g.panicMsg)
	}
	if g.err != nil {
		return nil, g.err
	}
	return g.result(), nil
}

func (g *fakeGenerator) GenerateFallback(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	g.got, g.usedMethod = req, "fallback"
	if g.err != nil {
		return nil, g.err
	}
	return g.result(), nil
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate-news-audio", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func TestGenerateAudio_Success(t *testing.T) {
	gen := &fakeGenerator{}
	h := NewServer(gen, Options{}).Routes()

	rec := post(t, h, `{"topics":["AI","Go"],"source_type":"news"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=news-summary.mp3", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID3-audio", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	assert.Equal(t, "full", gen.usedMethod)
	assert.Equal(t, []string{"AI", "Go"}, gen.got.Topics)
	assert.Equal(t, pipeline.SourceNews, gen.got.SourceType)
}

func TestGenerateAudio_MalformedBody(t *testing.T) {
	h := NewServer(&fakeGenerator{}, Options{}).Routes()

	rec := post(t, h, `{"topics": "not-a-list"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, detail(t, rec), "invalid request body")
}

func TestGenerateAudio_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"invalid", fmt.Errorf("%w: topics must not be empty", pipeline.ErrInvalidRequest), http.StatusBadRequest, "invalid request: topics must not be empty"},
		{"config", &pipeline.ConfigMissingError{Keys: []string{"GEMINI_API_KEY"}}, http.StatusInternalServerError, "GEMINI_API_KEY not configured"},
		{"no data", pipeline.ErrNoDataAvailable, http.StatusInternalServerError, "No data sources available"},
		{"too short", pipeline.ErrScriptTooShort, http.StatusInternalServerError, "Failed to generate meaningful content"},
		{"audio", fmt.Errorf("%w: elevenlabs: 401", audio.ErrAudioGenerationFailed), http.StatusInternalServerError, "Both audio services failed"},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error: disk on fire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewServer(&fakeGenerator{err: tt.err}, Options{}).Routes()
			rec := post(t, h, `{"topics":["AI"],"source_type":"both"}`)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.detail, detail(t, rec))
		})
	}
}

func TestGenerateAudio_PanicRecovered(t *testing.T) {
	h := NewServer(&fakeGenerator{panicMsg: "nil map"}, Options{}).Routes()

	rec := post(t, h, `{"topics":["AI"],"source_type":"both"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error: nil map", detail(t, rec))
}

func TestFallbackMode(t *testing.T) {
	gen := &fakeGenerator{}
	h := NewServer(gen, Options{Fallback: true}).Routes()

	rec := post(t, h, `{"topics":["AI"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", gen.usedMethod)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	hrec := httptest.NewRecorder()
	h.ServeHTTP(hrec, req)
	require.Equal(t, http.StatusOK, hrec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(hrec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"status": "healthy", "message": "NewsNinja Fallback API is running"}, body)
}

func TestHealth_OnlyInFallbackMode(t *testing.T) {
	h := NewServer(&fakeGenerator{}, Options{}).Routes()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestID_Propagated(t *testing.T) {
	h := NewServer(&fakeGenerator{}, Options{}).Routes()

	req := httptest.NewRequest(http.MethodPost, "/generate-news-audio", strings.NewReader(`{"topics":["AI"]}`))
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	h := NewServer(&fakeGenerator{}, Options{AllowOrigin: "http://localhost:8501"}).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/generate-news-audio", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:8501", rec.Header().Get("Access-Control-Allow-Origin"))
}
