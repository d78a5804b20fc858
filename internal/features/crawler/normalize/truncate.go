package normalize

import (
	"strings"
	"unicode"
)

// SummaryLength is the maximum summary size, in characters
const SummaryLength = 500

// Truncate shortens text to at most max characters. It prefers to cut at the
// last whitespace at or before max and falls back to a hard cut when the
// window contains none. Text already within the limit is returned unchanged.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	for i := max; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			if cut := strings.TrimRightFunc(string(runes[:i]), unicode.IsSpace); cut != "" {
				return cut
			}
			break
		}
	}

	return strings.TrimRightFunc(string(runes[:max]), unicode.IsSpace)
}
