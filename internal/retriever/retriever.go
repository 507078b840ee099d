// Package retriever implements the hybrid BM25 + symbol + optional-dense
// scorer that turns a natural-language question into a ranked set of files,
// a packed source-code context, and a confidence estimate. It never calls a
// language model: producing the final prose answer is a downstream
// collaborator's job, not this package's.
package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/codeqa/engine/internal/config"
	"github.com/codeqa/engine/internal/embed"
	coreerrors "github.com/codeqa/engine/internal/errors"
	"github.com/codeqa/engine/internal/extractor"
	"github.com/codeqa/engine/internal/store"
)

// Embedder is the minimal capability the retriever needs from a dense
// embedding backend: turn text into an L2-normalized vector. Any
// implementation (including one that always errors) can be supplied; a nil
// Embedder simply disables the dense-boost signal.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// FileScore is one file's final relevance score.
type FileScore struct {
	RelPath string
	Score   float64
}

// SymbolHit is one query word that matched a known symbol name exactly.
type SymbolHit struct {
	Word      string
	Locations []store.SymbolLocation
}

// Result is the outcome of a retrieval: ranked files, packed context,
// symbol hits, and a confidence estimate. It carries no answer text.
type Result struct {
	TopFiles      []string
	FileScores    []FileScore
	Context       string
	SymbolHits    []SymbolHit
	Confidence    string
	TopScore      float64
	QueryKeywords []string
}

// Retriever scores and assembles context for a single project's index.
type Retriever struct {
	store    *store.Store
	cfg      *config.RetrieverConfig
	embedder Embedder
	breaker  *coreerrors.CircuitBreaker
}

// New constructs a Retriever backed by st. A nil cfg falls back to defaults;
// a nil embedder disables the dense-boost signal. When an embedder is
// supplied, its calls are guarded by a circuit breaker: a backend that keeps
// failing (a dense-embedding server down, a model load error) trips the
// breaker so every subsequent query fails fast into BM25-only scoring
// instead of paying the embedder's timeout on every call.
func New(st *store.Store, cfg *config.RetrieverConfig, embedder Embedder) *Retriever {
	if cfg == nil {
		def := config.Default().Retriever
		cfg = &def
	}
	r := &Retriever{store: st, cfg: cfg, embedder: embedder}
	if embedder != nil {
		r.breaker = coreerrors.NewCircuitBreaker("dense-embedder")
	}
	return r
}

// Retrieve scores projectIdentifier's indexed files against query, optionally
// enriching the query from sessionID's prior turns, and returns the packed
// context plus confidence. sessionID may be empty to skip follow-up
// enrichment entirely.
func (r *Retriever) Retrieve(ctx context.Context, projectIdentifier, query, sessionID string) (*Result, error) {
	idx, err := r.store.LoadIndex(projectIdentifier)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, coreerrors.IndexAbsent(projectIdentifier)
	}

	enrichedQuery := query
	if sessionID != "" {
		turns, err := r.store.LoadSession(sessionID, 0)
		if err != nil {
			return nil, err
		}
		enrichedQuery = enrichQuery(query, turns, r.cfg.FollowUpTurnWindow)
	}

	return r.score(ctx, idx, enrichedQuery)
}

// enrichQuery appends the top-5 keywords of each of the last window turns'
// questions to query, so a short follow-up doesn't lose retrieval signal.
func enrichQuery(query string, turns []store.SessionTurn, window int) string {
	if len(turns) == 0 || window <= 0 {
		return query
	}
	start := len(turns) - window
	if start < 0 {
		start = 0
	}
	var extra []string
	for _, t := range turns[start:] {
		extra = append(extra, extractor.ExtractKeywords(t.Question, 5)...)
	}
	if len(extra) == 0 {
		return query
	}
	return query + " " + strings.Join(extra, " ")
}

// score runs the hybrid scorer against idx for the (already enriched) query.
func (r *Retriever) score(ctx context.Context, idx *store.Index, query string) (*Result, error) {
	queryKeywords := extractor.ExtractKeywords(query, r.cfg.QueryTopNKeywords)
	queryWords := strings.Fields(strings.ToLower(query))
	totalFiles := len(idx.Files)

	var symbolHits []SymbolHit
	seenSymbol := make(map[string]bool)
	for _, w := range queryWords {
		if seenSymbol[w] {
			continue
		}
		locs, ok := idx.SymbolMap[w]
		if !ok {
			continue
		}
		seenSymbol[w] = true
		symbolHits = append(symbolHits, SymbolHit{Word: w, Locations: locs})
	}

	fileScores := make(map[string]float64)

	for _, kw := range queryKeywords {
		filesWithKW := idx.KeywordMap[kw]
		if len(filesWithKW) == 0 {
			continue
		}
		df := float64(len(filesWithKW))
		idf := math.Log((float64(totalFiles)-df+0.5)/(df+0.5) + 1)
		for _, relPath := range filesWithKW {
			fileScores[relPath] += idf
		}
	}

	for _, hit := range symbolHits {
		for _, loc := range hit.Locations {
			fileScores[loc.File] += r.cfg.SymbolBoost
		}
	}

	if r.embedder != nil && totalFiles > 0 {
		r.applyDenseBoost(ctx, idx, query, fileScores)
	}

	type ranked struct {
		path  string
		score float64
	}
	var all []ranked
	for path, s := range fileScores {
		if s >= r.cfg.MinScore {
			all = append(all, ranked{path, s})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].path < all[j].path
	})
	if len(all) > r.cfg.TopFiles {
		all = all[:r.cfg.TopFiles]
	}

	topFiles := make([]string, len(all))
	fileScoreList := make([]FileScore, len(all))
	for i, rk := range all {
		topFiles[i] = rk.path
		fileScoreList[i] = FileScore{RelPath: rk.path, Score: rk.score}
	}

	context := packContext(idx, topFiles, symbolHits, r.cfg.MaxContextChars)

	var topScore float64
	if len(all) > 0 {
		topScore = all[0].score
	}
	maxPossible := float64(len(queryKeywords))*math.Log(float64(totalFiles)+1) + r.cfg.ConfidenceNormalizerConstant
	if totalFiles == 0 {
		maxPossible = 1
	}
	ratio := 0.0
	if maxPossible > 0 {
		ratio = topScore / maxPossible
	}
	confidence := confidenceBand(ratio, r.cfg.ConfidenceHighThreshold, r.cfg.ConfidenceMediumThreshold)

	return &Result{
		TopFiles:      topFiles,
		FileScores:    fileScoreList,
		Context:       context,
		SymbolHits:    symbolHits,
		Confidence:    confidence,
		TopScore:      topScore,
		QueryKeywords: queryKeywords,
	}, nil
}

// applyDenseBoost adds a cosine-similarity boost to fileScores for chunks
// whose similarity to the query embedding exceeds the configured floor.
// Failures degrade silently — BM25 scoring still stands on its own.
func (r *Retriever) applyDenseBoost(ctx context.Context, idx *store.Index, query string, fileScores map[string]float64) {
	queryVec, err := coreerrors.CircuitExecuteWithResult(r.breaker,
		func() ([]float32, error) { return r.embedder.Embed(ctx, query) },
		func() ([]float32, error) { return nil, coreerrors.ErrCircuitOpen },
	)
	if err != nil {
		return
	}
	rows, err := r.store.LoadEmbeddings(idx.ProjectID)
	if err != nil {
		return
	}

	// Small vector sets: an exact scan is cheap and exact. Large sets use
	// the approximate index instead — a retrieval-speed optimization, not a
	// different ranking: both paths boost by the same cosine similarity.
	if len(rows) <= embed.ANNThreshold {
		for _, row := range rows {
			sim := dotProduct(queryVec, row.Vector)
			if sim > r.cfg.DenseScoreFloor {
				fileScores[row.RelPath] += sim * r.cfg.DenseBoostMultiplier
			}
		}
		return
	}

	ann := embed.NewANNIndex()
	for _, row := range rows {
		ann.Add(row.RelPath, row.Vector)
	}
	for _, n := range ann.Search(queryVec, r.cfg.TopFiles*4) {
		if n.Score > r.cfg.DenseScoreFloor {
			fileScores[n.ID] += n.Score * r.cfg.DenseBoostMultiplier
		}
	}
}

func dotProduct(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// confidenceBand maps a ratio to the three-tier confidence label.
func confidenceBand(ratio, high, medium float64) string {
	switch {
	case ratio >= high:
		return "high"
	case ratio >= medium:
		return "medium"
	default:
		return "low"
	}
}

// packContext concatenates topFiles' chunks in order, each prefixed with
// "=== <path> [lines s-e] (symbol?) ===\n", stopping at the first chunk that
// would exceed budget chars. Symbol-hit hints are appended afterward and are
// always included.
func packContext(idx *store.Index, topFiles []string, symbolHits []SymbolHit, budget int) string {
	var parts []string
	charsUsed := 0

outer:
	for _, relPath := range topFiles {
		entry, ok := idx.Files[relPath]
		if !ok {
			continue
		}
		for _, chunk := range entry.Chunks {
			symLabel := ""
			if chunk.Symbol != "" {
				symLabel = fmt.Sprintf(" (%s)", chunk.Symbol)
			}
			part := fmt.Sprintf("=== %s [lines %d-%d]%s ===\n%s", relPath, chunk.StartLine, chunk.EndLine, symLabel, chunk.Content)
			if charsUsed+len(part) > budget {
				break outer
			}
			parts = append(parts, part)
			charsUsed += len(part)
		}
	}

	for _, hit := range symbolHits {
		for _, loc := range hit.Locations {
			parts = append(parts, fmt.Sprintf("\n[Symbol `%s` defined in %s at line %d (%s)]", hit.Word, loc.File, loc.Line, loc.Kind))
		}
	}

	return strings.Join(parts, "\n\n")
}
