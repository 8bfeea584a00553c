package audio

import (
	"strings"
	"time"
)

const timestampLayout = "20060102_150405"

// SanitizeLabel keeps ASCII letters, digits, spaces, '-' and '_', trims the
// result and joins words with '_'. An empty result becomes "tts".
func SanitizeLabel(label string) string {
	var sb strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == ' ', r == '-', r == '_':
			sb.WriteRune(r)
		}
	}
	clean := strings.Join(strings.Fields(sb.String()), "_")
	if clean == "" {
		return "tts"
	}
	return clean
}

// Filename returns "<sanitized label>_<YYYYMMDD_HHMMSS>.mp3".
func Filename(label string, at time.Time) string {
	return SanitizeLabel(label) + "_" + at.Format(timestampLayout) + ".mp3"
}
