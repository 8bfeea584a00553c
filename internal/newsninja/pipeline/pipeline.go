// Package pipeline orchestrates a NewsNinja request: aggregate sources,
// synthesize a script and render it to audio.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/RobinCoderZhao/newsninja/internal/logging"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/audio"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/broadcast"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/sources"
)

// ResponseFilename is the download name of every generated briefing.
const ResponseFilename = "news-summary.mp3"

// minScriptChars is the least number of non-whitespace characters a script
// must have to be worth rendering.
const minScriptChars = 10

// SourceType selects which aggregators run.
type SourceType string

const (
	SourceNews   SourceType = "news"
	SourceReddit SourceType = "reddit"
	SourceBoth   SourceType = "both"
)

// Request is one briefing request.
type Request struct {
	Topics     []string   `json:"topics"`
	SourceType SourceType `json:"source_type"`
}

// Validate checks the request. An empty source type means both.
func (r *Request) Validate() error {
	if len(r.Topics) == 0 {
		return fmt.Errorf("%w: topics must not be empty", ErrInvalidRequest)
	}
	for i, t := range r.Topics {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("%w: topic %d is blank", ErrInvalidRequest, i)
		}
	}
	switch r.SourceType {
	case "":
		r.SourceType = SourceBoth
	case SourceNews, SourceReddit, SourceBoth:
	default:
		return fmt.Errorf("%w: source_type must be one of news, reddit, both; got %q", ErrInvalidRequest, r.SourceType)
	}
	return nil
}

func (r Request) wants(kind sources.Kind) bool {
	switch kind {
	case sources.KindNews:
		return r.SourceType == SourceNews || r.SourceType == SourceBoth
	case sources.KindSocial:
		return r.SourceType == SourceReddit || r.SourceType == SourceBoth
	}
	return false
}

// Result is a finished briefing.
type Result struct {
	Audio     []byte
	MediaType string
	Filename  string
	Script    broadcast.Script
	Artifact  audio.Artifact
}

// Synthesizer writes a script from aggregated content. It never fails.
type Synthesizer interface {
	Synthesize(ctx context.Context, bundle sources.Bundle, topics []string) broadcast.Script
}

// Renderer turns a script into an audio file.
type Renderer interface {
	Render(ctx context.Context, text, label string) (audio.Artifact, error)
}

// ArtifactRecorder indexes rendered files for retention.
type ArtifactRecorder interface {
	RecordArtifact(ctx context.Context, a audio.Artifact) (string, error)
}

// Timeouts bound each stage. Zero means no stage deadline.
type Timeouts struct {
	Aggregate  time.Duration
	Synthesize time.Duration
	Render     time.Duration
}

// Deps are the pipeline collaborators. News, Social, Synthesizer and Renderer
// are required for Generate; FallbackRenderer for GenerateFallback.
type Deps struct {
	News             sources.Aggregator
	Social           sources.Aggregator
	Synthesizer      Synthesizer
	Renderer         Renderer
	FallbackRenderer Renderer
	Recorder         ArtifactRecorder
	// MissingCredentials lists unset credentials; nil skips the check.
	MissingCredentials func() []string
	Timeouts           Timeouts
	Logger             *slog.Logger
}

// Pipeline runs briefing requests. It is safe for concurrent use.
type Pipeline struct {
	deps   Deps
	logger *slog.Logger
}

// New creates a pipeline.
func New(deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{deps: deps, logger: logger}
}

// Generate runs the full pipeline.
func (p *Pipeline) Generate(ctx context.Context, req Request) (res *Result, err error) {
	log := logging.FromContext(ctx, p.logger)
	defer recoverUnexpected(log, &err)

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if p.deps.MissingCredentials != nil {
		if missing := p.deps.MissingCredentials(); len(missing) > 0 {
			return nil, &ConfigMissingError{Keys: missing}
		}
	}

	start := time.Now()
	log.Info("generating briefing", "topics", req.Topics, "source_type", req.SourceType)

	bundle := p.aggregate(ctx, log, req)
	if bundle.Empty() {
		return nil, ErrNoDataAvailable
	}

	sctx, cancel := withTimeout(ctx, p.deps.Timeouts.Synthesize)
	script := p.deps.Synthesizer.Synthesize(sctx, bundle, req.Topics)
	cancel()
	if script.Origin == broadcast.OriginTemplate {
		log.Warn("synthesis degraded to template script")
	}
	if meaningfulChars(script.Text) < minScriptChars {
		return nil, ErrScriptTooShort
	}

	res, err = p.render(ctx, p.deps.Renderer, script, TopicLabel(req.Topics))
	if err != nil {
		return nil, err
	}
	log.Info("briefing generated",
		"provider", res.Artifact.Provider,
		"script_origin", string(script.Origin),
		"bytes", len(res.Audio),
		"duration", time.Since(start))
	return res, nil
}

// GenerateFallback renders a model-free script with the fallback provider.
// It needs no credentials and does no aggregation.
func (p *Pipeline) GenerateFallback(ctx context.Context, req Request) (res *Result, err error) {
	log := logging.FromContext(ctx, p.logger)
	defer recoverUnexpected(log, &err)

	if err := req.Validate(); err != nil {
		return nil, err
	}
	log.Info("generating fallback briefing", "topics", req.Topics)

	text := broadcast.SimpleScript(req.Topics, sources.Bundle{})
	script := broadcast.Script{Text: text, Origin: broadcast.OriginTemplate}
	return p.render(ctx, p.deps.FallbackRenderer, script, TopicLabel(req.Topics))
}

func (p *Pipeline) aggregate(ctx context.Context, log *slog.Logger, req Request) sources.Bundle {
	actx, cancel := withTimeout(ctx, p.deps.Timeouts.Aggregate)
	defer cancel()

	var (
		wg     sync.WaitGroup
		bundle sources.Bundle
	)
	if req.wants(sources.KindNews) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.News = runContained(actx, log, sources.KindNews, p.deps.News, req.Topics)
		}()
	}
	if req.wants(sources.KindSocial) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bundle.Social = runContained(actx, log, sources.KindSocial, p.deps.Social, req.Topics)
		}()
	}
	wg.Wait()
	return bundle
}

// runContained runs one aggregator and substitutes the all-topics sentinel
// result if it errors or panics.
func runContained(ctx context.Context, log *slog.Logger, kind sources.Kind, agg sources.Aggregator, topics []string) (res sources.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("aggregator panicked", "source", string(kind), "panic", r)
			res = sources.UnavailableResult(kind, topics)
		}
	}()

	if agg == nil {
		log.Warn("source not configured", "source", string(kind))
		return sources.UnavailableResult(kind, topics)
	}
	out, err := agg.Aggregate(ctx, topics)
	if err != nil {
		log.Warn("source failed", "error", &sources.SourceError{Kind: kind, Err: err})
		return sources.UnavailableResult(kind, topics)
	}
	return out
}

func (p *Pipeline) render(ctx context.Context, r Renderer, script broadcast.Script, label string) (*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no renderer configured", audio.ErrAudioGenerationFailed)
	}
	rctx, cancel := withTimeout(ctx, p.deps.Timeouts.Render)
	defer cancel()

	art, err := r.Render(rctx, script.Text, label)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(art.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: read artifact: %w", audio.ErrAudioGenerationFailed, err)
	}

	if p.deps.Recorder != nil {
		if _, err := p.deps.Recorder.RecordArtifact(ctx, art); err != nil {
			logging.FromContext(ctx, p.logger).Warn("index artifact failed", "path", art.Path, "error", err)
		}
	}

	return &Result{
		Audio:     data,
		MediaType: audio.MediaType,
		Filename:  ResponseFilename,
		Script:    script,
		Artifact:  art,
	}, nil
}

// TopicLabel names the artifact file: topics joined with '_' for up to
// three topics, otherwise "<n>_topics".
func TopicLabel(topics []string) string {
	if len(topics) <= 3 {
		return strings.Join(topics, "_")
	}
	return strconv.Itoa(len(topics)) + "_topics"
}

func meaningfulChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func recoverUnexpected(log *slog.Logger, err *error) {
	if r := recover(); r != nil {
		log.Error("pipeline panicked", "panic", r, "stack", string(debug.Stack()))
		*err = fmt.Errorf("%w: %v", ErrUnexpected, r)
	}
}
