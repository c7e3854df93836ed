package llmclient

import "strings"

// CountTokens gives a rough token estimate for logging. It takes the larger
// of the word count and a four-characters-per-token heuristic, which keeps
// dense JSON from being badly under-counted.
func CountTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	chars := len(text) / 4
	if chars > words {
		return chars
	}
	if words == 0 {
		return 1
	}
	return words
}
