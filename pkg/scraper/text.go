package scraper

import (
	"strings"

	"golang.org/x/net/html"
)

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"svg": true, "iframe": true, "template": true, "head": true,
}

// ExtractText converts HTML to plain text with one text node per line.
// Script-like elements are dropped; empty lines are removed.
// Input without markup comes back as its own non-empty, trimmed lines.
func ExtractText(htmlContent string) string {
	return strings.Join(TextLines(htmlContent), "\n")
}

// TextLines is ExtractText before joining.
func TextLines(htmlContent string) []string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return splitLines(htmlContent)
	}

	var lines []string
	collectText(doc, &lines)
	return lines
}

func collectText(n *html.Node, lines *[]string) {
	if n.Type == html.ElementNode && skipTags[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		*lines = append(*lines, splitLines(n.Data)...)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, lines)
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
