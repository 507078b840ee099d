package embed

import (
	"sync"

	"github.com/coder/hnsw"
)

// ANNThreshold is the persisted-vector count above which ANNIndex is used
// instead of a brute-force scan. Below it, the scan is cheap enough that an
// approximate index buys nothing.
const ANNThreshold = 2000

// Neighbor is one approximate-nearest-neighbor hit.
type Neighbor struct {
	ID    string
	Score float64
}

// ANNIndex is an in-memory approximate-nearest-neighbor index over a set of
// L2-normalized vectors, built fresh from a project's persisted embedding
// rows on each query that needs it. It is a retrieval-speed optimization
// over the exact dot-product scan, not a replacement for the scoring
// formula: both paths rank by the same cosine similarity.
type ANNIndex struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[uint64]
	ids   []string
}

// NewANNIndex constructs an empty index ready for Add calls.
func NewANNIndex() *ANNIndex {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25
	return &ANNIndex{graph: graph}
}

// Add inserts vec under id. Vectors should already be L2-normalized.
func (idx *ANNIndex) Add(id string, vec []float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	key := uint64(len(idx.ids))
	idx.ids = append(idx.ids, id)
	idx.graph.Add(hnsw.MakeNode(key, vec))
}

// Len reports how many vectors have been added.
func (idx *ANNIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.ids)
}

// Search returns up to k approximate nearest neighbors to query, scored by
// cosine similarity (higher is closer).
func (idx *ANNIndex) Search(query []float32, k int) []Neighbor {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.ids) == 0 {
		return nil
	}

	nodes := idx.graph.Search(query, k)
	out := make([]Neighbor, 0, len(nodes))
	for _, node := range nodes {
		if int(node.Key) >= len(idx.ids) {
			continue
		}
		distance := idx.graph.Distance(query, node.Value)
		out = append(out, Neighbor{ID: idx.ids[node.Key], Score: 1 - float64(distance)})
	}
	return out
}
