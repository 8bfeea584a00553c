package sources

import (
	"fmt"
	"strings"
)

var degradedMarkers = []string{"error", "unavailable", "unable to fetch"}

// IsMeaningful reports whether content is real source material rather than
// an empty or sentinel message. Matching is case-insensitive.
func IsMeaningful(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	lower := strings.ToLower(content)
	for _, m := range degradedMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}
	return true
}

func fetchFailedMessage(kind Kind, topic string) string {
	if kind == KindSocial {
		return fmt.Sprintf("Unable to fetch Reddit discussions for %s. Please try again later.", topic)
	}
	return fmt.Sprintf("Unable to fetch news for %s. Please try again later.", topic)
}

func noContentMessage(kind Kind, topic string) string {
	if kind == KindSocial {
		return fmt.Sprintf("Reddit discussions unavailable for %s: no posts found.", topic)
	}
	return fmt.Sprintf("News unavailable for %s: no headlines found.", topic)
}

func unavailableMessage(kind Kind, topic string) string {
	if kind == KindSocial {
		return "Reddit discussions unavailable for " + topic
	}
	return "News unavailable for " + topic
}
