package broadcast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RobinCoderZhao/newsninja/internal/newsninja/sources"
)

const (
	templateOpening = "Good evening, and welcome to your personalized news briefing."
	templateClosing = "Thank you for staying informed with NewsNinja. We'll continue to bring you the latest updates on these important topics."
)

var ordinals = []string{"first", "second", "third", "fourth", "fifth"}

func ordinal(n int) string {
	if n >= 1 && n <= len(ordinals) {
		return ordinals[n-1]
	}
	return strconv.Itoa(n)
}

// TemplateScript is the deterministic script used when every model tier
// failed. Each topic is named exactly once, in order.
func TemplateScript(topics []string) string {
	var sb strings.Builder
	sb.WriteString(templateOpening)
	for i, topic := range topics {
		fmt.Fprintf(&sb, " In our %s story today, we focus on %s.", ordinal(i+1), topic)
		sb.WriteString(" This subject continues to be of significant importance in today's rapidly evolving landscape.")
		sb.WriteString(" Industry experts and researchers are actively monitoring developments in this area, as it represents a key area of innovation and public interest.")
		sb.WriteString(" The implications of these advances extend across multiple sectors, affecting both policy makers and the general public.")
		sb.WriteString(" This concludes our coverage of this story.")
	}
	sb.WriteString(" ")
	sb.WriteString(templateClosing)
	return sb.String()
}

// SimpleScript builds a short script without any model, mentioning which
// topics had news or discussion data. Used by fallback mode.
func SimpleScript(topics []string, bundle sources.Bundle) string {
	var sb strings.Builder
	sb.WriteString("Good evening, and welcome to your personalized news summary. ")
	if len(topics) == 1 {
		fmt.Fprintf(&sb, "Today we're focusing on %s. ", topics[0])
	} else {
		fmt.Fprintf(&sb, "Today we're covering %d important topics. ", len(topics))
	}

	for i, topic := range topics {
		fmt.Fprintf(&sb, "In story number %d, we examine the latest developments in %s. ", i+1, topic)
		if sources.IsMeaningful(bundle.News[topic]) {
			fmt.Fprintf(&sb, "Recent reports indicate significant activity in %s research and development. ", topic)
		}
		if sources.IsMeaningful(bundle.Social[topic]) {
			fmt.Fprintf(&sb, "Online discussions show growing public interest in %s. ", topic)
		}
		fmt.Fprintf(&sb, "Experts continue to monitor trends and developments in the %s sector. ", topic)
	}

	sb.WriteString("That concludes today's news summary. Thank you for staying informed with NewsNinja.")
	return sb.String()
}
