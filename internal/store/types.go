// Package store holds the durable, per-project index: files, chunks,
// symbols, keyword→file relations, optional embeddings, and a shared,
// cross-project session log. One SQLite database per project plus one
// shared sessions database, all under a configurable base directory.
package store

import "github.com/codeqa/engine/internal/extractor"

// SchemaVersion is bumped whenever the on-disk table shapes change. A
// loader that sees a mismatch treats the index as absent.
const SchemaVersion = 3

// FileEntry is one file's full contribution to a project's index.
type FileEntry struct {
	RelPath      string
	Extension    string
	SizeBytes    int64
	LastModified float64
	Keywords     []string
	Chunks       []extractor.Chunk
	Symbols      []string
}

// SymbolLocation is one occurrence of a symbol name.
type SymbolLocation struct {
	File string
	Line int
	Kind extractor.SymbolKind
}

// Index is the full in-memory reconstruction of a project's stored index.
type Index struct {
	SchemaVersion int
	ProjectID     string
	Slug          string
	ProjectRoot   string
	IndexedAt     float64
	TotalFiles    int

	Files      map[string]*FileEntry
	KeywordMap map[string][]string              // keyword -> rel_paths
	SymbolMap  map[string][]SymbolLocation       // name -> locations
}

// ProjectSummary is the lightweight listing row for list_projects.
type ProjectSummary struct {
	ProjectID   string
	Slug        string
	ProjectRoot string
	IndexedAt   float64
	TotalFiles  int
}

// EmbeddingRow is one persisted chunk vector.
type EmbeddingRow struct {
	RelPath    string
	ChunkIndex int
	Vector     []float32
}

// SessionTurn is one (question, answer, relevant_files, timestamp) record.
type SessionTurn struct {
	TurnIndex     int
	Question      string
	Answer        string
	RelevantFiles []string
	CreatedAt     float64
}
