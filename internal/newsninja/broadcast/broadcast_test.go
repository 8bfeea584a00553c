package broadcast

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RobinCoderZhao/newsninja/internal/newsninja/sources"
	"github.com/RobinCoderZhao/newsninja/pkg/llm"
)

type stubClient struct {
	content string
	err     error
	reqs    *[]*llm.Request
	closed  *int
}

func (c *stubClient) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	if c.reqs != nil {
		*c.reqs = append(*c.reqs, req)
	}
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Response{Content: c.content}, nil
}
func (c *stubClient) Provider() llm.Provider { return llm.Gemini }
func (c *stubClient) Close() error {
	if c.closed != nil {
		*c.closed++
	}
	return nil
}

var defaultTiers = []llm.Tier{
	{Provider: llm.Gemini, Model: "gemini-1.5-flash"},
	{Provider: llm.Gemini, Model: "gemini-pro"},
	{Provider: llm.Gemini, Model: "gemini-1.5-pro"},
}

// factoryFor answers each model with the matching stub, recording the order tiers were tried.
func factoryFor(stubs map[string]*stubClient, tried *[]string) ClientFactory {
	return func(tier llm.Tier) (llm.Client, error) {
		*tried = append(*tried, tier.Model)
		c, ok := stubs[tier.Model]
		if !ok {
			return nil, errors.New("no client for " + tier.Model)
		}
		return c, nil
	}
}

func quotaErr() error {
	return &llm.APIError{Provider: llm.Gemini, StatusCode: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED", Message: "Quota exceeded"}
}

func TestBuildPrompt_WithRealData(t *testing.T) {
	bundle := sources.Bundle{
		News:   sources.Result{"AI": "Chips are hot.", "Go": "Unable to fetch news for Go. Please try again later."},
		Social: sources.Result{"AI": "Users debate agents."},
	}
	p := buildPrompt(bundle, []string{"AI", "Go"})

	assert.True(t, p.HasRealData)
	assert.Equal(t, systemPrompt, p.System)
	assert.Contains(t, p.User, "TOPIC: AI\n\nCURRENT NEWS:\nChips are hot.\n\nONLINE DISCUSSIONS:\nUsers debate agents.")
	assert.Contains(t, p.User, "--- NEW TOPIC ---\n\nTOPIC: Go\n\nCreate an informative news segment about Go")
	assert.NotContains(t, p.User, "Unable to fetch")
}

func TestBuildPrompt_NoRealData(t *testing.T) {
	bundle := sources.Bundle{
		News:   sources.UnavailableResult(sources.KindNews, []string{"Climate", "Space"}),
		Social: sources.Result{"Climate": "Error: unavailable"},
	}
	p := buildPrompt(bundle, []string{"Climate", "Space"})

	assert.False(t, p.HasRealData)
	assert.Contains(t, p.User, "these topics: Climate, Space.")
	assert.NotContains(t, p.User, "TOPIC:")
}

func TestSynthesize_FirstTierSucceeds(t *testing.T) {
	var reqs []*llm.Request
	closed := 0
	var tried []string
	stubs := map[string]*stubClient{
		"gemini-1.5-flash": {content: "  Script from flash.  ", reqs: &reqs, closed: &closed},
	}
	s := NewSynthesizer(defaultTiers, factoryFor(stubs, &tried), DefaultParams(), nil)

	script := s.Synthesize(context.Background(), sources.Bundle{News: sources.Result{"AI": "Chips."}}, []string{"AI"})

	assert.Equal(t, Script{Text: "Script from flash.", Origin: OriginModel, Model: "gemini:gemini-1.5-flash", HasRealData: true}, script)
	assert.Equal(t, []string{"gemini-1.5-flash"}, tried)
	assert.Equal(t, 1, closed)

	require.Len(t, reqs, 1)
	assert.Equal(t, 1000, reqs[0].MaxTokens)
	assert.InDelta(t, 0.7, reqs[0].Temperature, 1e-9)
	assert.InDelta(t, 0.8, reqs[0].TopP, 1e-9)
	assert.Equal(t, 40, reqs[0].TopK)
}

func TestSynthesize_FallsThroughTiers(t *testing.T) {
	var tried []string
	stubs := map[string]*stubClient{
		"gemini-1.5-flash": {err: quotaErr()},
		"gemini-pro":       {content: "   "},
		"gemini-1.5-pro":   {content: "Script from pro."},
	}
	s := NewSynthesizer(defaultTiers, factoryFor(stubs, &tried), DefaultParams(), nil)

	script := s.Synthesize(context.Background(), sources.Bundle{}, []string{"AI"})

	assert.Equal(t, OriginModel, script.Origin)
	assert.Equal(t, "Script from pro.", script.Text)
	assert.Equal(t, "gemini:gemini-1.5-pro", script.Model)
	assert.Equal(t, []string{"gemini-1.5-flash", "gemini-pro", "gemini-1.5-pro"}, tried)
}

func TestSynthesize_AllTiersFailUsesTemplate(t *testing.T) {
	var tried []string
	stubs := map[string]*stubClient{
		"gemini-1.5-flash": {err: quotaErr()},
		"gemini-pro":       {err: errors.New("model not found")},
		// gemini-1.5-pro has no client at all
	}
	s := NewSynthesizer(defaultTiers, factoryFor(stubs, &tried), DefaultParams(), nil)

	topics := []string{"Quantum Computing", "Climate Policy"}
	bundle := sources.Bundle{
		News:   sources.UnavailableResult(sources.KindNews, topics),
		Social: sources.UnavailableResult(sources.KindSocial, topics),
	}
	script := s.Synthesize(context.Background(), bundle, topics)

	assert.Equal(t, OriginTemplate, script.Origin)
	assert.False(t, script.HasRealData)
	assert.Empty(t, script.Model)
	assert.Equal(t, TemplateScript(topics), script.Text)
	assert.Len(t, tried, 3)
}

func TestSynthesize_CancelledContextSkipsModels(t *testing.T) {
	var tried []string
	s := NewSynthesizer(defaultTiers, factoryFor(map[string]*stubClient{}, &tried), DefaultParams(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	script := s.Synthesize(ctx, sources.Bundle{}, []string{"AI"})

	assert.Equal(t, OriginTemplate, script.Origin)
	assert.Empty(t, tried)
}

type panicClient struct{ stubClient }

func (c *panicClient) Generate(context.Context, *llm.Request) (*llm.Response, error) {
	panic("nil response body")
}

func TestSynthesize_PanickingTierFallsThrough(t *testing.T) {
	var tried []string
	factory := func(tier llm.Tier) (llm.Client, error) {
		tried = append(tried, tier.Model)
		if tier.Model == "gemini-1.5-pro" {
			return &stubClient{content: "Script from pro."}, nil
		}
		return &panicClient{}, nil
	}
	s := NewSynthesizer(defaultTiers, factory, DefaultParams(), nil)

	var script Script
	require.NotPanics(t, func() {
		script = s.Synthesize(context.Background(), sources.Bundle{}, []string{"AI"})
	})
	assert.Equal(t, "Script from pro.", script.Text)
	assert.Equal(t, []string{"gemini-1.5-flash", "gemini-pro", "gemini-1.5-pro"}, tried)
}

func TestSynthesize_AllTiersPanicUsesTemplate(t *testing.T) {
	factory := func(llm.Tier) (llm.Client, error) { return &panicClient{}, nil }
	s := NewSynthesizer(defaultTiers, factory, DefaultParams(), nil)

	topics := []string{"AI", "Go"}
	script := s.Synthesize(context.Background(), sources.Bundle{}, topics)

	assert.Equal(t, OriginTemplate, script.Origin)
	assert.Equal(t, TemplateScript(topics), script.Text)

	a := s.attempt(context.Background(), defaultTiers[0], buildPrompt(sources.Bundle{}, topics))
	assert.Equal(t, OutcomeFailed, a.Outcome)
	assert.ErrorContains(t, a.Err, "panicked")
}

func TestAttempt_Outcomes(t *testing.T) {
	tier := llm.Tier{Provider: llm.Gemini, Model: "m"}
	p := buildPrompt(sources.Bundle{}, []string{"AI"})

	tests := []struct {
		name   string
		client *stubClient
		want   Outcome
	}{
		{"ok", &stubClient{content: "text"}, OutcomeOK},
		{"quota", &stubClient{err: quotaErr()}, OutcomeQuota},
		{"empty error", &stubClient{err: llm.ErrEmptyResponse}, OutcomeEmpty},
		{"blank", &stubClient{content: "\n"}, OutcomeEmpty},
		{"failed", &stubClient{err: errors.New("500")}, OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(nil, func(llm.Tier) (llm.Client, error) { return tt.client, nil }, DefaultParams(), nil)
			a := s.attempt(context.Background(), tier, p)
			assert.Equal(t, tt.want, a.Outcome)
			assert.Equal(t, tier, a.Tier)
			if tt.want == OutcomeOK {
				assert.NoError(t, a.Err)
			} else {
				assert.Error(t, a.Err)
			}
		})
	}
}

func TestTemplateScript(t *testing.T) {
	topics := []string{"Quantum Computing", "Climate Policy", "Space Travel", "Ocean Health", "Urban Farming", "Robotics"}
	script := TemplateScript(topics)

	assert.True(t, strings.HasPrefix(script, templateOpening))
	assert.True(t, strings.HasSuffix(script, templateClosing))

	last := -1
	for _, topic := range topics {
		assert.Equal(t, 1, strings.Count(script, topic), topic)
		idx := strings.Index(script, topic)
		assert.Greater(t, idx, last, "topics must appear in order")
		last = idx
	}
	assert.Contains(t, script, "In our first story today, we focus on Quantum Computing.")
	assert.Contains(t, script, "In our fifth story today, we focus on Urban Farming.")
	assert.Contains(t, script, "In our 6 story today, we focus on Robotics.")
}

func TestSimpleScript(t *testing.T) {
	bundle := sources.Bundle{
		News:   sources.Result{"AI": "Chips.", "Go": "Unable to fetch news for Go. Please try again later."},
		Social: sources.Result{"Go": "Gophers are happy."},
	}
	script := SimpleScript([]string{"AI", "Go"}, bundle)

	assert.True(t, strings.HasPrefix(script, "Good evening, and welcome to your personalized news summary. Today we're covering 2 important topics."))
	assert.Contains(t, script, "In story number 1, we examine the latest developments in AI.")
	assert.Contains(t, script, "Recent reports indicate significant activity in AI research and development.")
	assert.NotContains(t, script, "activity in Go research")
	assert.Contains(t, script, "Online discussions show growing public interest in Go.")
	assert.True(t, strings.HasSuffix(script, "Thank you for staying informed with NewsNinja."))

	single := SimpleScript([]string{"AI"}, sources.Bundle{})
	assert.Contains(t, single, "Today we're focusing on AI.")
}

func TestNewClientFactory(t *testing.T) {
	factory := NewClientFactory(llm.Config{APIKey: "k"}, "http://localhost:11434")

	c, err := factory(llm.Tier{Provider: llm.Ollama, Model: "llama3.2"})
	require.NoError(t, err)
	assert.Equal(t, llm.Ollama, c.Provider())
	require.NoError(t, c.Close())

	c, err = factory(llm.Tier{Provider: llm.Gemini, Model: "gemini-1.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, llm.Gemini, c.Provider())
}
