package reviewcards

import "strings"

const (
	contextPadding = 30
	contextMax     = 100
)

// extractContext returns a snippet of text around the first occurrence of
// phrase, padded by a few characters on each side and marked with ellipses
// where it was cut. When the phrase does not appear, the head of the text is
// returned instead. Offsets are in runes so multibyte scripts cut cleanly.
func extractContext(text, phrase string) string {
	runes := []rune(text)

	idx := strings.Index(text, phrase)
	if idx == -1 {
		if len(runes) <= contextMax {
			return text
		}
		return string(runes[:contextMax]) + "..."
	}

	start := len([]rune(text[:idx]))
	end := start + len([]rune(phrase))

	from := start - contextPadding
	if from < 0 {
		from = 0
	}
	to := end + contextPadding
	if to > len(runes) {
		to = len(runes)
	}

	snippet := string(runes[from:to])
	if from > 0 {
		snippet = "..." + snippet
	}
	if to < len(runes) {
		snippet = snippet + "..."
	}
	return snippet
}
