package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords_SplitsCamelCaseAndUnderscores(t *testing.T) {
	keywords := ExtractKeywords("func handleUserLogin(user_id string) {}", 20)

	assert.Contains(t, keywords, "handle")
	assert.Contains(t, keywords, "user")
	assert.Contains(t, keywords, "login")
	assert.NotContains(t, keywords, "id")
}

func TestExtractKeywords_ExcludesStopWordsAndShortTokens(t *testing.T) {
	keywords := ExtractKeywords("const let var true false null self import return class def function the", 20)

	assert.Empty(t, keywords)
}

func TestExtractKeywords_OrdersByFrequencyThenFirstSeen(t *testing.T) {
	keywords := ExtractKeywords("widget widget widget gadget gadget gizmo", 20)

	assert.Equal(t, []string{"widget", "gadget", "gizmo"}, keywords)
}

func TestExtractKeywords_RespectsTopNBound(t *testing.T) {
	keywords := ExtractKeywords("alpha beta gamma delta epsilon zeta eta theta", 3)

	assert.Len(t, keywords, 3)
}

func TestExtractKeywords_NonPositiveTopNUsesDefault(t *testing.T) {
	content := ""
	for _, w := range []string{"alphaone", "betatwo", "gammathree", "deltafour"} {
		content += w + " "
	}

	keywords := ExtractKeywords(content, 0)

	assert.Len(t, keywords, 4)
}

func TestExtractKeywords_EmptyContentReturnsEmpty(t *testing.T) {
	keywords := ExtractKeywords("", 20)

	assert.Empty(t, keywords)
}
