// Package embed implements the optional dense-embedding path: a capability
// interface any embedding back-end can satisfy, a deterministic offline
// fallback that needs no model or network access, and an approximate
// nearest-neighbor index over a project's persisted vectors.
package embed

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// DefaultDimensions is the embedding width used when a project has no
// model-specific override: 384, matching the persisted vector column.
const DefaultDimensions = 384

// MaxSurfaceTextChars caps how much of a chunk's content feeds the surface
// text that gets embedded.
const MaxSurfaceTextChars = 500

// Embedder generates L2-normalized vector embeddings for text. The real
// model back-end (network calls, GPU/NPU inference) is an external
// collaborator; this package only defines the capability and ships one
// offline implementation of it.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding width this embedder produces.
	Dimensions() int

	// ModelName returns the model identifier, for diagnostics.
	ModelName() string

	// Available reports whether the embedder is ready to serve requests.
	Available(ctx context.Context) bool

	// Close releases any held resources.
	Close() error
}

// SurfaceText builds the exact text that gets embedded for a chunk: the
// file's relative path, its owning symbol if any, then up to the first
// MaxSurfaceTextChars characters of the chunk's content.
func SurfaceText(relPath, symbol, content string) string {
	var b strings.Builder
	b.WriteString(relPath)
	if symbol != "" {
		b.WriteByte(' ')
		b.WriteString(symbol)
	}
	b.WriteByte('\n')
	if len(content) > MaxSurfaceTextChars {
		content = content[:MaxSurfaceTextChars]
	}
	b.WriteString(content)
	return b.String()
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}

// errClosed is returned by a closed embedder.
var errClosed = fmt.Errorf("embedder is closed")
