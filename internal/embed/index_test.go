package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestANNIndex_SearchFindsClosestVector(t *testing.T) {
	embedder := NewStaticEmbedder(0)
	defer func() { _ = embedder.Close() }()

	idx := NewANNIndex()

	docs := map[string]string{
		"auth.go":    "func Authenticate(user, password string) error",
		"handler.go": "func HandleRequest(w http.ResponseWriter, r *http.Request)",
		"math.go":    "func Add(a, b int) int { return a + b }",
	}
	for relPath, text := range docs {
		vec, err := embedder.Embed(context.Background(), text)
		require.NoError(t, err)
		idx.Add(relPath, vec)
	}
	require.Equal(t, 3, idx.Len())

	query, err := embedder.Embed(context.Background(), "func Authenticate(user string) error")
	require.NoError(t, err)

	results := idx.Search(query, 1)
	require.Len(t, results, 1)
	assert.Equal(t, "auth.go", results[0].ID)
}

func TestANNIndex_SearchOnEmptyIndexReturnsNil(t *testing.T) {
	idx := NewANNIndex()
	results := idx.Search([]float32{1, 0, 0}, 5)
	assert.Nil(t, results)
}

func TestANNIndex_AddAllowsDuplicateIDs(t *testing.T) {
	idx := NewANNIndex()
	idx.Add("same.go", []float32{1, 0, 0})
	idx.Add("same.go", []float32{0, 1, 0})

	assert.Equal(t, 2, idx.Len())
	results := idx.Search([]float32{1, 0, 0}, 2)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "same.go", r.ID)
	}
}
