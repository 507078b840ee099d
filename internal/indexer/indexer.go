// Package indexer orchestrates full and incremental project builds: scan,
// read, extract, and persist, with per-file failure isolation and bounded
// parallelism.
package indexer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/codeqa/engine/internal/config"
	"github.com/codeqa/engine/internal/embed"
	coreerrors "github.com/codeqa/engine/internal/errors"
	"github.com/codeqa/engine/internal/extractor"
	"github.com/codeqa/engine/internal/project"
	"github.com/codeqa/engine/internal/scanner"
	"github.com/codeqa/engine/internal/store"
)

const maxReadBytes = 50 * 1024
const binarySniffWindow = 8 * 1024

// Indexer builds and maintains a project's stored index.
type Indexer struct {
	store    *store.Store
	cfg      *config.ExtractorConfig
	now      func() float64
	embedder embed.Embedder
}

// New constructs an Indexer backed by st, using extractor tuning from cfg.
// Embeddings are not built unless WithEmbedder is also called.
func New(st *store.Store, cfg *config.ExtractorConfig) *Indexer {
	if cfg == nil {
		def := config.Default().Extractor
		cfg = &def
	}
	return &Indexer{
		store: st,
		cfg:   cfg,
		now:   func() float64 { return float64(time.Now().UnixNano()) / 1e9 },
	}
}

// WithEmbedder enables the optional dense-embedding path: after each
// successful build or update, every chunk's surface text is embedded and
// persisted. A failure in this path is logged and otherwise ignored — the
// structural index it rides on top of has already been saved.
func (idx *Indexer) WithEmbedder(e embed.Embedder) *Indexer {
	idx.embedder = e
	return idx
}

// BuildResult is the outcome of a full index build.
type BuildResult struct {
	FilesIndexed int
	ProjectRoot  string
	IndexedAt    float64
	Message      string
}

// UpdateResult is the outcome of an incremental update.
type UpdateResult struct {
	FilesUpdated int
	FilesDeleted int
	UpdatedFiles []string
	DeletedFiles []string
	Message      string
}

// fileResult is the extraction outcome for one scanned file.
type fileResult struct {
	meta  scanner.FileMeta
	entry *store.FileEntry
	ok    bool
}

// IndexProject performs a full build of root, replacing any prior index.
func (idx *Indexer) IndexProject(ctx context.Context, root string) (*BuildResult, error) {
	canonical, err := project.Canonicalize(root)
	if err != nil {
		return nil, err
	}

	files, err := scanner.Scan(canonical)
	if err != nil {
		return nil, err
	}

	results := idx.extractAll(ctx, files)

	index := &store.Index{
		ProjectRoot: canonical,
		IndexedAt:   idx.now(),
		Files:       make(map[string]*store.FileEntry),
		KeywordMap:  make(map[string][]string),
		SymbolMap:   make(map[string][]store.SymbolLocation),
	}

	for _, r := range results {
		if !r.ok {
			continue
		}
		insertEntry(index, r.meta.RelPath, r.entry)
	}
	index.TotalFiles = len(index.Files)

	if err := idx.store.SaveIndex(index); err != nil {
		return nil, err
	}

	idx.buildEmbeddings(ctx, index)

	return &BuildResult{
		FilesIndexed: index.TotalFiles,
		ProjectRoot:  canonical,
		IndexedAt:    index.IndexedAt,
		Message:      "indexed " + itoa(index.TotalFiles) + " files",
	}, nil
}

// UpdateIndex performs an incremental re-index of root against the prior
// stored index, reconciling deletions and re-extracting changed files.
func (idx *Indexer) UpdateIndex(ctx context.Context, root string) (*UpdateResult, error) {
	canonical, err := project.Canonicalize(root)
	if err != nil {
		return nil, err
	}

	prior, err := idx.store.LoadIndex(canonical)
	if err != nil {
		return nil, err
	}
	if prior == nil {
		return nil, coreerrors.IndexAbsent(canonical)
	}

	files, err := scanner.Scan(canonical)
	if err != nil {
		return nil, err
	}

	currentByRel := make(map[string]scanner.FileMeta, len(files))
	for _, f := range files {
		currentByRel[f.RelPath] = f
	}

	var deleted []string
	for relPath := range prior.Files {
		if _, ok := currentByRel[relPath]; !ok {
			deleted = append(deleted, relPath)
		}
	}
	sort.Strings(deleted)

	var changed []scanner.FileMeta
	for _, f := range files {
		_, ok := prior.Files[f.RelPath]
		if !ok || f.ModTime > prior.IndexedAt {
			changed = append(changed, f)
		}
	}

	for _, relPath := range deleted {
		removeEntry(prior, relPath)
	}
	for _, f := range changed {
		removeEntry(prior, f.RelPath)
	}

	results := idx.extractAll(ctx, changed)

	var updated []string
	for _, r := range results {
		if !r.ok {
			continue
		}
		insertEntry(prior, r.meta.RelPath, r.entry)
		updated = append(updated, r.meta.RelPath)
	}
	sort.Strings(updated)

	prior.IndexedAt = idx.now()
	prior.TotalFiles = len(prior.Files)

	if err := idx.store.SaveIndex(prior); err != nil {
		return nil, err
	}

	idx.buildEmbeddings(ctx, prior)

	return &UpdateResult{
		FilesUpdated: len(updated),
		FilesDeleted: len(deleted),
		UpdatedFiles: updated,
		DeletedFiles: deleted,
		Message:      "updated " + itoa(len(updated)) + ", deleted " + itoa(len(deleted)),
	}, nil
}

// buildEmbeddings computes and persists one vector per chunk across every
// file in index, using idx.embedder's surface-text convention. It is a
// no-op when no embedder is configured, and any failure is logged and
// swallowed — the caller's structural index build already succeeded.
func (idx *Indexer) buildEmbeddings(ctx context.Context, index *store.Index) {
	if idx.embedder == nil {
		return
	}

	var relPaths []string
	var chunkIndices []int
	var texts []string
	for relPath, entry := range index.Files {
		for i, chunk := range entry.Chunks {
			relPaths = append(relPaths, relPath)
			chunkIndices = append(chunkIndices, i)
			texts = append(texts, embed.SurfaceText(relPath, chunk.Symbol, chunk.Content))
		}
	}
	if len(texts) == 0 {
		return
	}

	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		slog.Warn("embedding build failed, continuing without dense boost",
			slog.String("project_root", index.ProjectRoot), slog.String("error", err.Error()))
		return
	}

	rows := make([]store.EmbeddingRow, len(texts))
	for i := range texts {
		rows[i] = store.EmbeddingRow{
			RelPath:    relPaths[i],
			ChunkIndex: chunkIndices[i],
			Vector:     vectors[i],
		}
	}

	if err := idx.store.SaveEmbeddings(index.ProjectID, rows); err != nil {
		slog.Warn("persisting embeddings failed, continuing without dense boost",
			slog.String("project_root", index.ProjectRoot), slog.String("error", err.Error()))
	}
}

// extractAll reads and extracts every file in files with bounded
// parallelism. A per-file failure is logged and the file is skipped; it
// never aborts the whole batch.
func (idx *Indexer) extractAll(ctx context.Context, files []scanner.FileMeta) []fileResult {
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	var mu sync.Mutex

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}

			entry, err := idx.extractOne(f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("skipping file", slog.String("path", f.RelPath), slog.String("error", err.Error()))
				results[i] = fileResult{meta: f, ok: false}
				return nil
			}
			results[i] = fileResult{meta: f, entry: entry, ok: true}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// extractOne reads, classifies, and extracts a single file's contribution.
func (idx *Indexer) extractOne(meta scanner.FileMeta) (*store.FileEntry, error) {
	content, err := readBounded(meta.AbsPath)
	if err != nil {
		if os.IsPermission(err) {
			return nil, coreerrors.PermissionDenied(meta.RelPath, err)
		}
		return nil, coreerrors.ReadError(meta.RelPath, err)
	}

	if isBinary(content) {
		return nil, coreerrors.BinaryFile(meta.RelPath)
	}

	if len(trimSpace(content)) == 0 {
		return nil, coreerrors.BinaryFile(meta.RelPath)
	}

	text := string(content)
	symbols := extractor.ExtractSymbols(context.Background(), content, meta.RelPath)
	keywords := extractor.ExtractKeywords(text, idx.cfg.TopNKeywords)
	chunks := extractor.ChunkFile(text, symbols, idx.cfg.MaxChunkLines)

	symbolNames := make([]string, len(symbols))
	for i, s := range symbols {
		symbolNames[i] = s.Name
	}

	return &store.FileEntry{
		RelPath:      meta.RelPath,
		Extension:    meta.Extension,
		SizeBytes:    meta.SizeBytes,
		LastModified: meta.ModTime,
		Keywords:     keywords,
		Chunks:       chunks,
		Symbols:      symbolNames,
	}, nil
}

// readBounded reads at most maxReadBytes from path.
func readBounded(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, maxReadBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

// isBinary reports whether content looks like a binary file: a null byte in
// the first 8 KB, or a UTF-8 replacement-character ratio above 10% once
// decoded.
func isBinary(content []byte) bool {
	window := content
	if len(window) > binarySniffWindow {
		window = window[:binarySniffWindow]
	}
	for _, b := range window {
		if b == 0 {
			return true
		}
	}

	if len(content) == 0 {
		return false
	}

	runeCount := 0
	replacementCount := 0
	for _, r := range string(content) {
		runeCount++
		if r == utf8.RuneError {
			replacementCount++
		}
	}
	if runeCount == 0 {
		return false
	}
	return float64(replacementCount)/float64(runeCount) > 0.10
}

func trimSpace(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpaceByte(b[start]) {
		start++
	}
	for end > start && isSpaceByte(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// insertEntry adds entry's contributions into index's file/keyword/symbol maps.
func insertEntry(index *store.Index, relPath string, entry *store.FileEntry) {
	index.Files[relPath] = entry

	for _, kw := range entry.Keywords {
		if !containsStr(index.KeywordMap[kw], relPath) {
			index.KeywordMap[kw] = append(index.KeywordMap[kw], relPath)
		}
	}

	for _, chunk := range entry.Chunks {
		if chunk.Symbol == "" {
			continue
		}
		index.SymbolMap[chunk.Symbol] = append(index.SymbolMap[chunk.Symbol], store.SymbolLocation{
			File: relPath,
			Line: chunk.StartLine,
		})
	}
}

// removeEntry purges relPath's prior contributions from index's maps.
func removeEntry(index *store.Index, relPath string) {
	entry, ok := index.Files[relPath]
	if !ok {
		return
	}
	delete(index.Files, relPath)

	for _, kw := range entry.Keywords {
		index.KeywordMap[kw] = removeStr(index.KeywordMap[kw], relPath)
		if len(index.KeywordMap[kw]) == 0 {
			delete(index.KeywordMap, kw)
		}
	}

	for name, locs := range index.SymbolMap {
		var kept []store.SymbolLocation
		for _, loc := range locs {
			if loc.File != relPath {
				kept = append(kept, loc)
			}
		}
		if len(kept) == 0 {
			delete(index.SymbolMap, name)
		} else {
			index.SymbolMap[name] = kept
		}
	}
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeStr(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
