package broadcast

import (
	"fmt"
	"strings"

	"github.com/RobinCoderZhao/newsninja/internal/newsninja/sources"
)

const systemPrompt = `You are broadcast_news_writer, a professional virtual news reporter. Generate natural, TTS-ready news reports.

IMPORTANT: Even if specific current data is unavailable, you should create informative content about the topics based on your general knowledge.

For each topic, create a professional news segment that includes:
1. Current relevance and importance of the topic
2. Key developments and trends in the field
3. Why this topic matters to listeners
4. Future outlook or implications

If specific current data is provided, incorporate it. If not, use your knowledge to create valuable content.

Formatting rules:
- ALWAYS start directly with the content, NO INTRODUCTIONS
- Keep audio length 60-120 seconds per topic
- Use natural speech transitions between topics
- Maintain professional, informative tone
- End with "This concludes our coverage of [topic]"
- Write in full paragraphs optimized for speech synthesis
- Avoid markdown or special characters`

const topicSeparator = "\n\n--- NEW TOPIC ---\n\n"

// prompt is the model input for one synthesis run.
type prompt struct {
	System      string
	User        string
	HasRealData bool
}

// buildPrompt assembles per-topic context blocks from the bundle. Topics with
// no meaningful content get an instruction to use general knowledge instead.
func buildPrompt(bundle sources.Bundle, topics []string) prompt {
	hasRealData := false
	blocks := make([]string, 0, len(topics))

	for _, topic := range topics {
		var sections []string
		if news := bundle.News[topic]; sources.IsMeaningful(news) {
			sections = append(sections, "CURRENT NEWS:\n"+news)
		}
		if social := bundle.Social[topic]; sources.IsMeaningful(social) {
			sections = append(sections, "ONLINE DISCUSSIONS:\n"+social)
		}

		block := "TOPIC: " + topic + "\n\n"
		if len(sections) > 0 {
			hasRealData = true
			block += strings.Join(sections, "\n\n")
		} else {
			block += fmt.Sprintf("Create an informative news segment about %s based on general knowledge and current relevance.", topic)
		}
		blocks = append(blocks, block)
	}

	var user string
	if hasRealData {
		user = "Create broadcast segments for these topics using the provided current information:\n\n" +
			strings.Join(blocks, topicSeparator)
	} else {
		user = fmt.Sprintf("Create professional news segments about these topics: %s. "+
			"Even though current specific data isn't available, provide informative content about each topic's "+
			"current relevance, recent developments, and why it matters. Make it sound like a real news broadcast.",
			strings.Join(topics, ", "))
	}

	return prompt{System: systemPrompt, User: user, HasRealData: hasRealData}
}
