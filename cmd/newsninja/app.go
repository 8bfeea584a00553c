package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/RobinCoderZhao/newsninja/internal/logging"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/audio"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/broadcast"
	nncfg "github.com/RobinCoderZhao/newsninja/internal/newsninja/config"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/pipeline"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/retention"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/sources"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/store"
	"github.com/RobinCoderZhao/newsninja/pkg/config"
	"github.com/RobinCoderZhao/newsninja/pkg/llm"
	"github.com/RobinCoderZhao/newsninja/pkg/retry"
	"github.com/RobinCoderZhao/newsninja/pkg/scraper"
)

// app is the wired process: one set of limiters, clients and stores shared
// by every request.
type app struct {
	cfg      nncfg.Config
	logger   *slog.Logger
	store    *store.Store
	pipeline *pipeline.Pipeline
	sweeper  *retention.Sweeper
}

func newApp(ctx context.Context, configPath, envFile string) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	cfg, err := nncfg.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	idx, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open artifact index: %w", err)
	}

	tiers, err := llm.ParseTiers(cfg.Synthesis.Tiers)
	if err != nil {
		idx.Close()
		return nil, err
	}

	news, social := buildAggregators(cfg, logger)

	base := llm.Config{
		APIKey:      cfg.Credentials.GeminiAPIKey,
		Timeout:     cfg.Synthesis.Timeout.Std(),
		MaxTokens:   cfg.Synthesis.MaxTokens,
		Temperature: cfg.Synthesis.Temperature,
	}
	synth := broadcast.NewSynthesizer(tiers, broadcast.NewClientFactory(base, cfg.Synthesis.OllamaURL), broadcast.Params{
		MaxTokens:   cfg.Synthesis.MaxTokens,
		Temperature: cfg.Synthesis.Temperature,
		TopP:        cfg.Synthesis.TopP,
		TopK:        cfg.Synthesis.TopK,
	}, logger)

	gtts := audio.NewGTTS(audio.GTTSConfig{BaseURL: cfg.Audio.GTTSBaseURL, Lang: cfg.Audio.Language})
	eleven := audio.NewElevenLabs(audio.ElevenLabsConfig{
		BaseURL:      cfg.Audio.ElevenBaseURL,
		APIKey:       cfg.Credentials.ElevenAPIKey,
		VoiceID:      cfg.Audio.VoiceID,
		ModelID:      cfg.Audio.ModelID,
		OutputFormat: cfg.Audio.OutputFormat,
	})

	p := pipeline.New(pipeline.Deps{
		News:               news,
		Social:             social,
		Synthesizer:        synth,
		Renderer:           audio.NewRenderer(cfg.Audio.OutputDir, eleven, gtts, logger),
		FallbackRenderer:   audio.NewRenderer(cfg.Audio.OutputDir, nil, gtts, logger),
		Recorder:           idx,
		MissingCredentials: cfg.MissingCredentials,
		Timeouts: pipeline.Timeouts{
			Aggregate:  cfg.Timeouts.Aggregate.Std(),
			Synthesize: cfg.Timeouts.Synthesize.Std(),
			Render:     cfg.Timeouts.Render.Std(),
		},
		Logger: logger,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    idx,
		pipeline: p,
		sweeper:  retention.NewSweeper(idx, cfg.Audio.OutputDir, cfg.Audio.Retention.Std(), logger),
	}, nil
}

// buildAggregators returns nil aggregators when the summarizer cannot be
// created; the pipeline's credential check rejects those requests first.
func buildAggregators(cfg nncfg.Config, logger *slog.Logger) (sources.Aggregator, sources.Aggregator) {
	summaryClient, err := llm.NewClient(llm.Config{
		Provider:   llm.Gemini,
		Model:      cfg.Sources.SummaryModel,
		APIKey:     cfg.Credentials.GeminiAPIKey,
		MaxRetries: 1,
		Timeout:    cfg.Synthesis.Timeout.Std(),
	})
	if err != nil {
		logger.Warn("summarizer unavailable, aggregation disabled", "error", err)
		return nil, nil
	}
	summarizer := sources.NewLLMSummarizer(summaryClient)

	fetcher := scraper.NewUnlockerFetcher(scraper.UnlockerConfig{
		Endpoint: cfg.Sources.UnlockerEndpoint,
		APIKey:   cfg.Credentials.BrightDataAPIKey,
		Zone:     cfg.Credentials.BrightDataZone,
		Timeout:  cfg.Sources.FetchTimeout.Std(),
	})
	limiters := sources.NewLimiters(cfg.Sources.AdmitEvery.Std())
	opts := sources.Options{
		TopicDelay: cfg.Sources.TopicDelay.Std(),
		Retry: retry.Policy{
			Attempts:  cfg.Sources.Attempts,
			BaseDelay: cfg.Sources.BackoffBase.Std(),
			MaxDelay:  cfg.Sources.BackoffMax.Std(),
		},
		Logger: logger,
	}

	return sources.NewNewsAggregator(fetcher, summarizer, limiters.News, opts),
		sources.NewSocialAggregator(fetcher, summarizer, limiters.Social, opts)
}

// Close releases the artifact index.
func (a *app) Close() error {
	return a.store.Close()
}
