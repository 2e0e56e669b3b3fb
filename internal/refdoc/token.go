package refdoc

import "strings"

// EstimateTokens gives a rough token count from the word count. Exact
// tokenization is not required for budgeting prompt context.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := int(float64(len(strings.Fields(text))) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

// Truncate trims text to roughly the given token budget, cutting at a word
// boundary. A non-positive budget leaves the text untouched.
func Truncate(text string, budget int) string {
	if budget <= 0 || EstimateTokens(text) <= budget {
		return text
	}
	words := strings.Fields(text)
	keep := int(float64(budget) / 1.33)
	if keep < 1 {
		keep = 1
	}
	if keep >= len(words) {
		return text
	}
	return strings.Join(words[:keep], " ")
}
