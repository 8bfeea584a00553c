package sources

import (
	"strings"

	"github.com/RobinCoderZhao/newsninja/pkg/scraper"
)

// blockDelimiter ends a headline block on Google News result pages.
const blockDelimiter = "More"

// ExtractHeadlines reduces a search results page (markup or already
// extracted text) to one headline per line.
func ExtractHeadlines(page string) string {
	return strings.Join(HeadlineLines(scraper.TextLines(page)), "\n")
}

// HeadlineLines groups lines into blocks terminated by a "More" line and
// returns the first line of every block, in order. A trailing block without
// a delimiter is kept.
func HeadlineLines(lines []string) []string {
	var (
		headlines []string
		block     []string
	)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == blockDelimiter {
			if len(block) > 0 {
				headlines = append(headlines, block[0])
				block = block[:0]
			}
			continue
		}
		block = append(block, line)
	}
	if len(block) > 0 {
		headlines = append(headlines, block[0])
	}
	return headlines
}
