package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/RobinCoderZhao/newsninja/pkg/llm"
)

// Summarizer turns raw headlines or discussion titles into a short,
// speech-ready summary for one topic.
type Summarizer interface {
	SummarizeNews(ctx context.Context, topic, headlines string) (string, error)
	SummarizeDiscussions(ctx context.Context, topic string, posts []Post) (string, error)
}

const newsEditorPrompt = `You are my personal news editor and scriptwriter for a news podcast. Your job is to turn raw headlines into a clean, professional, and TTS-friendly news script.

The final output will be read aloud by a news anchor or text-to-speech engine. So:
- Do not include any special characters, emojis, formatting symbols, or markdown.
- Do not add any preamble or framing like "Here's your summary" or "Let me explain".
- Write in full, clear, spoken-language paragraphs.
- Keep the tone formal, professional, and broadcast-style, just like a real TV news script.
- Focus on the most important headlines and turn them into short, informative news segments that sound natural when spoken.
- Start right away with the actual script, using transitions between topics if needed.

Remember: Your only output should be a clean script that is ready to be read out loud.`

const discussionAnalystPrompt = `You are an online discussion analyst preparing material for a spoken news briefing.
Summarize what people are saying about the topic in the discussion titles below.
- Describe the main themes, the overall sentiment and any notable disagreements.
- Do not quote usernames and do not invent facts that the titles do not support.
- Write two or three short spoken-language paragraphs with no markdown, lists or special characters.
- Start directly with the summary, no preamble.`

// LLMSummarizer implements Summarizer with a language model.
type LLMSummarizer struct {
	client      llm.Client
	maxTokens   int
	temperature float64
}

// NewLLMSummarizer creates a summarizer backed by client.
func NewLLMSummarizer(client llm.Client) *LLMSummarizer {
	return &LLMSummarizer{client: client, maxTokens: 800, temperature: 0.4}
}

// SummarizeNews writes a short news script from newline-separated headlines.
func (s *LLMSummarizer) SummarizeNews(ctx context.Context, topic, headlines string) (string, error) {
	prompt := fmt.Sprintf("Topic: %s\n\nHeadlines to summarize:\n%s", topic, headlines)
	return s.generate(ctx, newsEditorPrompt, prompt)
}

// SummarizeDiscussions writes a short digest of the discussion posts.
func (s *LLMSummarizer) SummarizeDiscussions(ctx context.Context, topic string, posts []Post) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n\nDiscussion titles:\n", topic)
	for _, p := range posts {
		sb.WriteString("- ")
		sb.WriteString(p.Title)
		if p.Community != "" {
			fmt.Fprintf(&sb, " (%s)", p.Community)
		}
		if p.Comments > 0 {
			fmt.Fprintf(&sb, " [%d comments]", p.Comments)
		}
		sb.WriteByte('\n')
	}
	return s.generate(ctx, discussionAnalystPrompt, sb.String())
}

func (s *LLMSummarizer) generate(ctx context.Context, system, prompt string) (string, error) {
	req := llm.UserPrompt(system, prompt)
	req.MaxTokens = s.maxTokens
	req.Temperature = s.temperature

	resp, err := s.client.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}
