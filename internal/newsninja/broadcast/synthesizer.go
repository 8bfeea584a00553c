// Package broadcast turns aggregated topic content into a spoken news script.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RobinCoderZhao/newsninja/internal/newsninja/sources"
	"github.com/RobinCoderZhao/newsninja/pkg/llm"
)

// Origin records which path produced a script.
type Origin string

const (
	OriginModel    Origin = "model"
	OriginTemplate Origin = "template"
)

// Script is a synthesized broadcast script.
type Script struct {
	Text        string
	Origin      Origin
	Model       string // tier that produced the text; empty for templates
	HasRealData bool
}

// Outcome classifies a single tier attempt.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeQuota
	OutcomeFailed
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeQuota:
		return "quota"
	case OutcomeEmpty:
		return "empty"
	default:
		return "failed"
	}
}

// Attempt is the result of asking one tier for a script.
type Attempt struct {
	Tier    llm.Tier
	Outcome Outcome
	Content string
	Cost    float64 // estimated USD, zero when unknown
	Err     error
}

// Params are the generation settings sent to every tier.
type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// DefaultParams returns temperature 0.7, top_p 0.8, top_k 40, 1000 tokens.
func DefaultParams() Params {
	return Params{MaxTokens: 1000, Temperature: 0.7, TopP: 0.8, TopK: 40}
}

// ClientFactory creates the client for one tier.
type ClientFactory func(tier llm.Tier) (llm.Client, error)

// NewClientFactory builds tier clients from base, with retries disabled so a
// quota rejection moves straight to the next tier.
func NewClientFactory(base llm.Config, ollamaURL string) ClientFactory {
	return func(tier llm.Tier) (llm.Client, error) {
		cfg := tier.Config(base, ollamaURL)
		cfg.MaxRetries = 1
		return llm.NewClient(cfg)
	}
}

// Synthesizer writes broadcast scripts, trying model tiers in order and
// falling back to TemplateScript. It never fails.
type Synthesizer struct {
	tiers     []llm.Tier
	newClient ClientFactory
	params    Params
	logger    *slog.Logger
}

// NewSynthesizer creates a synthesizer. A nil logger means slog.Default().
func NewSynthesizer(tiers []llm.Tier, factory ClientFactory, params Params, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{tiers: tiers, newClient: factory, params: params, logger: logger}
}

// Synthesize produces a script covering topics in order.
func (s *Synthesizer) Synthesize(ctx context.Context, bundle sources.Bundle, topics []string) Script {
	p := buildPrompt(bundle, topics)

	for _, tier := range s.tiers {
		if ctx.Err() != nil {
			break
		}
		a := s.attempt(ctx, tier, p)
		if a.Outcome == OutcomeOK {
			s.logger.Info("script generated", "tier", tier.String(), "real_data", p.HasRealData, "chars", len(a.Content), "cost", a.Cost)
			return Script{Text: a.Content, Origin: OriginModel, Model: tier.String(), HasRealData: p.HasRealData}
		}
		s.logger.Warn("model tier failed", "tier", tier.String(), "outcome", a.Outcome.String(), "error", a.Err)
	}

	s.logger.Warn("all model tiers failed, using template script", "topics", len(topics))
	return Script{Text: TemplateScript(topics), Origin: OriginTemplate, HasRealData: p.HasRealData}
}

// attempt asks one tier for a script. A panicking client counts as a failed
// tier.
func (s *Synthesizer) attempt(ctx context.Context, tier llm.Tier, p prompt) (a Attempt) {
	a = Attempt{Tier: tier}
	defer func() {
		if r := recover(); r != nil {
			a = Attempt{Tier: tier, Outcome: OutcomeFailed, Err: fmt.Errorf("tier %s panicked: %v", tier, r)}
		}
	}()

	client, err := s.newClient(tier)
	if err != nil {
		a.Outcome, a.Err = OutcomeFailed, err
		return a
	}
	defer client.Close()

	req := llm.UserPrompt(p.System, p.User)
	req.MaxTokens = s.params.MaxTokens
	req.Temperature = s.params.Temperature
	req.TopP = s.params.TopP
	req.TopK = s.params.TopK

	resp, err := client.Generate(ctx, req)
	switch {
	case err == nil:
	case llm.IsQuota(err):
		a.Outcome, a.Err = OutcomeQuota, err
		return a
	case errors.Is(err, llm.ErrEmptyResponse):
		a.Outcome, a.Err = OutcomeEmpty, err
		return a
	default:
		a.Outcome, a.Err = OutcomeFailed, err
		return a
	}

	a.Content = strings.TrimSpace(resp.Content)
	a.Cost = resp.Cost
	if a.Content == "" {
		a.Outcome, a.Err = OutcomeEmpty, llm.ErrEmptyResponse
		return a
	}
	a.Outcome = OutcomeOK
	return a
}
