package llm

import (
	"fmt"
	"strings"
)

// Tier is one model configuration in an ordered preference list.
//
// Tiers are written as "provider:model" in config files and env vars:
//
//	NEWSNINJA_TIERS=gemini:gemini-1.5-flash,gemini:gemini-pro,ollama:llama3.2
//
// A bare model name means Gemini.
type Tier struct {
	Provider Provider
	Model    string
}

func (t Tier) String() string {
	return string(t.Provider) + ":" + t.Model
}

// ParseTier parses a "provider:model" tier string.
func ParseTier(raw string) (Tier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Tier{}, fmt.Errorf("empty model tier")
	}
	provider, model, found := strings.Cut(raw, ":")
	if !found {
		return Tier{Provider: Gemini, Model: raw}, nil
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	model = strings.TrimSpace(model)
	switch Provider(provider) {
	case Gemini, Ollama:
	default:
		return Tier{}, fmt.Errorf("unsupported LLM provider in tier %q", raw)
	}
	if model == "" {
		return Tier{}, fmt.Errorf("model tier %q has no model", raw)
	}
	return Tier{Provider: Provider(provider), Model: model}, nil
}

// ParseTiers parses every entry, preserving order.
func ParseTiers(entries []string) ([]Tier, error) {
	tiers := make([]Tier, 0, len(entries))
	for _, s := range entries {
		t, err := ParseTier(s)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, nil
}

// Config returns base with the tier's provider and model applied.
// Ollama tiers drop the API key and use ollamaURL when set.
func (t Tier) Config(base Config, ollamaURL string) Config {
	cfg := base
	cfg.Provider = t.Provider
	cfg.Model = t.Model
	if t.Provider == Ollama {
		cfg.APIKey = ""
		cfg.BaseURL = ollamaURL
	}
	return cfg
}
