package extractor

import "regexp"

// DefaultTopKeywords is the default cardinality bound on a file's keyword bag.
const DefaultTopKeywords = 20

var alphaRun = regexp.MustCompile(`[a-zA-Z]{3,}`)
var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// stopWords are language-structural tokens with no search value.
var stopWords = map[string]bool{
	"the": true, "import": true, "return": true, "class": true,
	"def": true, "function": true, "const": true, "let": true,
	"var": true, "true": true, "false": true, "null": true,
	"self": true, "type": true, "pass": true, "print": true,
}

// ExtractKeywords returns the topN most frequent meaningful sub-tokens in
// content, ties broken by first-seen order.
func ExtractKeywords(content string, topN int) []string {
	if topN <= 0 {
		topN = DefaultTopKeywords
	}

	counts := make(map[string]int)
	order := make([]string, 0)

	for _, run := range alphaRun.FindAllString(content, -1) {
		for _, sub := range splitIdentifier(run) {
			sub = toLower(sub)
			if len(sub) <= 2 || stopWords[sub] {
				continue
			}
			if counts[sub] == 0 {
				order = append(order, sub)
			}
			counts[sub]++
		}
	}

	sorted := make([]string, len(order))
	copy(sorted, order)
	// stable sort by descending frequency, first-seen order preserved for ties
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && counts[sorted[j]] > counts[sorted[j-1]]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	return sorted
}

// splitIdentifier splits a run on camelCase boundaries and underscores.
func splitIdentifier(run string) []string {
	spaced := camelBoundary.ReplaceAllString(run, "$1 $2")
	var out []string
	start := 0
	for i := 0; i <= len(spaced); i++ {
		if i == len(spaced) || spaced[i] == ' ' || spaced[i] == '_' {
			if i > start {
				out = append(out, spaced[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
