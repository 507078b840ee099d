package store

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/gofrs/flock"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	coreerrors "github.com/codeqa/engine/internal/errors"
	"github.com/codeqa/engine/internal/extractor"
	"github.com/codeqa/engine/internal/project"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	rel_path TEXT PRIMARY KEY,
	extension TEXT,
	size_bytes INTEGER,
	last_modified REAL,
	keywords TEXT
);

CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	rel_path TEXT NOT NULL REFERENCES files(rel_path) ON DELETE CASCADE,
	chunk_index INTEGER NOT NULL,
	start_line INTEGER,
	end_line INTEGER,
	content TEXT,
	symbol_name TEXT
);

CREATE TABLE IF NOT EXISTS symbols (
	name TEXT NOT NULL,
	rel_path TEXT NOT NULL REFERENCES files(rel_path) ON DELETE CASCADE,
	line INTEGER,
	type TEXT,
	PRIMARY KEY (name, rel_path, line)
);

CREATE TABLE IF NOT EXISTS keyword_files (
	keyword TEXT NOT NULL,
	rel_path TEXT NOT NULL REFERENCES files(rel_path) ON DELETE CASCADE,
	PRIMARY KEY (keyword, rel_path)
);

CREATE TABLE IF NOT EXISTS embeddings (
	rel_path TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	vector BLOB,
	PRIMARY KEY (rel_path, chunk_index)
);

CREATE INDEX IF NOT EXISTS idx_chunks_rel_path ON chunks(rel_path);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_keyword_files_keyword ON keyword_files(keyword);
`

const sessionsDDL = `
CREATE TABLE IF NOT EXISTS session_turns (
	session_id TEXT NOT NULL,
	turn_index INTEGER NOT NULL,
	question TEXT,
	answer TEXT,
	relevant_files TEXT,
	created_at REAL,
	PRIMARY KEY (session_id, turn_index)
);
`

// Store is the durable, per-project index plus the shared session log.
type Store struct {
	baseDir string

	mu    sync.Mutex
	cache *lru.Cache[string, *sql.DB]

	sessionsOnce sync.Once
	sessionsDB   *sql.DB
	sessionsErr  error
}

// New opens a Store rooted at baseDir, creating the directory layout if
// absent.
func New(baseDir string, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 16
	}
	if err := os.MkdirAll(filepath.Join(baseDir, "projects"), 0o755); err != nil {
		return nil, err
	}

	cache, err := lru.NewWithEvict[string, *sql.DB](cacheSize, func(_ string, db *sql.DB) {
		_ = db.Close()
	})
	if err != nil {
		return nil, err
	}

	return &Store{baseDir: baseDir, cache: cache}, nil
}

func (s *Store) projectDBPath(projectID string) string {
	return filepath.Join(s.baseDir, "projects", projectID+".db")
}

func (s *Store) lockPath(projectID string) string {
	return filepath.Join(s.baseDir, "projects", projectID+".lock")
}

func (s *Store) openProjectDB(projectID string) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if db, ok := s.cache.Get(projectID); ok {
		return db, nil
	}

	db, err := sql.Open("sqlite", s.projectDBPath(projectID)+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		db.Close()
		return nil, err
	}

	s.cache.Add(projectID, db)
	return db, nil
}

func (s *Store) evict(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(projectID)
}

// SaveIndex atomically replaces a project's stored index.
func (s *Store) SaveIndex(idx *Index) error {
	canonical, err := project.Canonicalize(idx.ProjectRoot)
	if err != nil {
		return err
	}
	idx.ProjectID = project.ID(canonical)
	idx.Slug = project.Slug(canonical)
	idx.SchemaVersion = SchemaVersion
	idx.TotalFiles = len(idx.Files)

	lock := flock.New(s.lockPath(idx.ProjectID))
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	db, err := s.openProjectDB(idx.ProjectID)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if err := replaceTx(tx, idx, canonical); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func replaceTx(tx *sql.Tx, idx *Index, canonicalRoot string) error {
	for _, stmt := range []string{
		"DELETE FROM chunks", "DELETE FROM symbols",
		"DELETE FROM keyword_files", "DELETE FROM files",
		"DELETE FROM embeddings",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	metaRows := map[string]string{
		"schema_version": strconv.Itoa(SchemaVersion),
		"project_root":   canonicalRoot,
		"indexed_at":     formatFloat(idx.IndexedAt),
		"total_files":    strconv.Itoa(idx.TotalFiles),
		"slug":           idx.Slug,
		"project_id":     idx.ProjectID,
	}
	for k, v := range metaRows {
		if _, err := tx.Exec("INSERT OR REPLACE INTO meta VALUES (?, ?)", k, v); err != nil {
			return err
		}
	}

	relPaths := make([]string, 0, len(idx.Files))
	for relPath := range idx.Files {
		relPaths = append(relPaths, relPath)
	}
	sort.Strings(relPaths)

	for _, relPath := range relPaths {
		f := idx.Files[relPath]
		kwJSON, err := json.Marshal(f.Keywords)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO files VALUES (?, ?, ?, ?, ?)",
			relPath, f.Extension, f.SizeBytes, f.LastModified, string(kwJSON),
		); err != nil {
			return err
		}

		for i, c := range f.Chunks {
			var symbol interface{}
			if c.Symbol != "" {
				symbol = c.Symbol
			}
			if _, err := tx.Exec(
				"INSERT INTO chunks (rel_path, chunk_index, start_line, end_line, content, symbol_name) VALUES (?, ?, ?, ?, ?, ?)",
				relPath, i, c.StartLine, c.EndLine, c.Content, symbol,
			); err != nil {
				return err
			}
		}
	}

	for name, locs := range idx.SymbolMap {
		for _, loc := range locs {
			if _, err := tx.Exec(
				"INSERT OR REPLACE INTO symbols VALUES (?, ?, ?, ?)",
				name, loc.File, loc.Line, string(loc.Kind),
			); err != nil {
				return err
			}
		}
	}

	for kw, files := range idx.KeywordMap {
		for _, relPath := range files {
			if _, err := tx.Exec(
				"INSERT OR REPLACE INTO keyword_files VALUES (?, ?)",
				kw, relPath,
			); err != nil {
				return err
			}
		}
	}

	return nil
}

// LoadIndex resolves identifier (path, slug, project_id, or empty for "most
// recently indexed") and reconstructs the in-memory index, or returns
// (nil, nil) if absent. Corruption triggers deletion of the offending
// database and an absent result.
func (s *Store) LoadIndex(identifier string) (*Index, error) {
	projectID, err := s.Resolve(identifier)
	if err != nil {
		return nil, err
	}
	if projectID == "" {
		return nil, nil
	}

	idx, err := s.loadByProjectID(projectID)
	if err != nil {
		// Corruption: delete the offending database and report absent.
		s.evict(projectID)
		os.Remove(s.projectDBPath(projectID))
		return nil, nil
	}
	return idx, nil
}

func (s *Store) loadByProjectID(projectID string) (*Index, error) {
	db, err := s.openProjectDB(projectID)
	if err != nil {
		return nil, err
	}

	var schemaVersionStr, projectRoot, indexedAtStr string
	if err := db.QueryRow("SELECT value FROM meta WHERE key='schema_version'").Scan(&schemaVersionStr); err != nil {
		return nil, err
	}
	schemaVersion, err := strconv.Atoi(schemaVersionStr)
	if err != nil {
		return nil, err
	}
	if schemaVersion != SchemaVersion {
		return nil, coreerrors.SchemaMismatch(projectID)
	}
	if err := db.QueryRow("SELECT value FROM meta WHERE key='project_root'").Scan(&projectRoot); err != nil {
		return nil, err
	}
	if err := db.QueryRow("SELECT value FROM meta WHERE key='indexed_at'").Scan(&indexedAtStr); err != nil {
		return nil, err
	}
	indexedAt, err := strconv.ParseFloat(indexedAtStr, 64)
	if err != nil {
		return nil, err
	}
	var slug string
	db.QueryRow("SELECT value FROM meta WHERE key='slug'").Scan(&slug)

	idx := &Index{
		SchemaVersion: schemaVersion,
		ProjectID:     projectID,
		Slug:          slug,
		ProjectRoot:   projectRoot,
		IndexedAt:     indexedAt,
		Files:         make(map[string]*FileEntry),
		KeywordMap:    make(map[string][]string),
		SymbolMap:     make(map[string][]SymbolLocation),
	}

	fileRows, err := db.Query("SELECT rel_path, extension, size_bytes, last_modified, keywords FROM files")
	if err != nil {
		return nil, err
	}
	defer fileRows.Close()

	for fileRows.Next() {
		var relPath, ext, keywordsJSON string
		var size int64
		var mtime float64
		if err := fileRows.Scan(&relPath, &ext, &size, &mtime, &keywordsJSON); err != nil {
			return nil, err
		}
		var keywords []string
		if err := json.Unmarshal([]byte(keywordsJSON), &keywords); err != nil {
			return nil, err
		}
		idx.Files[relPath] = &FileEntry{
			RelPath:      relPath,
			Extension:    ext,
			SizeBytes:    size,
			LastModified: mtime,
			Keywords:     keywords,
		}
	}
	if err := fileRows.Err(); err != nil {
		return nil, err
	}

	for relPath, entry := range idx.Files {
		chunkRows, err := db.Query(
			"SELECT start_line, end_line, content, symbol_name FROM chunks WHERE rel_path=? ORDER BY chunk_index", relPath)
		if err != nil {
			return nil, err
		}
		var chunks []chunkRow
		for chunkRows.Next() {
			var c chunkRow
			var symbol sql.NullString
			if err := chunkRows.Scan(&c.StartLine, &c.EndLine, &c.Content, &symbol); err != nil {
				chunkRows.Close()
				return nil, err
			}
			c.Symbol = symbol.String
			chunks = append(chunks, c)
		}
		chunkRows.Close()
		entry.Chunks = toExtractorChunks(chunks)

		symRows, err := db.Query("SELECT name FROM symbols WHERE rel_path=?", relPath)
		if err != nil {
			return nil, err
		}
		for symRows.Next() {
			var name string
			if err := symRows.Scan(&name); err != nil {
				symRows.Close()
				return nil, err
			}
			entry.Symbols = append(entry.Symbols, name)
		}
		symRows.Close()
	}

	kwRows, err := db.Query("SELECT keyword, rel_path FROM keyword_files")
	if err != nil {
		return nil, err
	}
	for kwRows.Next() {
		var kw, relPath string
		if err := kwRows.Scan(&kw, &relPath); err != nil {
			kwRows.Close()
			return nil, err
		}
		idx.KeywordMap[kw] = append(idx.KeywordMap[kw], relPath)
	}
	kwRows.Close()

	symMapRows, err := db.Query("SELECT name, rel_path, line, type FROM symbols")
	if err != nil {
		return nil, err
	}
	for symMapRows.Next() {
		var name, relPath, kind string
		var line int
		if err := symMapRows.Scan(&name, &relPath, &line, &kind); err != nil {
			symMapRows.Close()
			return nil, err
		}
		idx.SymbolMap[name] = append(idx.SymbolMap[name], SymbolLocation{
			File: relPath, Line: line, Kind: extractor.SymbolKind(kind),
		})
	}
	symMapRows.Close()

	idx.TotalFiles = len(idx.Files)
	return idx, nil
}

type chunkRow struct {
	StartLine int
	EndLine   int
	Content   string
	Symbol    string
}

// ListProjects enumerates every project database under the store,
// silently omitting entries whose meta is unreadable.
func (s *Store) ListProjects() ([]ProjectSummary, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, "projects"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []ProjectSummary
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".db" {
			continue
		}
		projectID := e.Name()[:len(e.Name())-len(".db")]
		idx, err := s.loadByProjectID(projectID)
		if err != nil || idx == nil {
			continue
		}
		out = append(out, ProjectSummary{
			ProjectID:   idx.ProjectID,
			Slug:        idx.Slug,
			ProjectRoot: idx.ProjectRoot,
			IndexedAt:   idx.IndexedAt,
			TotalFiles:  idx.TotalFiles,
		})
	}
	return out, nil
}

// DeleteProject removes the project's database (and embeddings, stored in
// the same file), reporting whether anything matched. Sessions are left
// intact.
func (s *Store) DeleteProject(identifier string) (bool, error) {
	projectID, err := s.Resolve(identifier)
	if err != nil {
		return false, err
	}
	if projectID == "" {
		return false, nil
	}

	s.evict(projectID)
	path := s.projectDBPath(projectID)
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, err
	}
	os.Remove(path + "-wal")
	os.Remove(path + "-shm")
	os.Remove(s.lockPath(projectID))
	return true, nil
}

// Resolve maps identifier (canonical/raw path, slug, project_id, or empty
// for "most recently indexed") to a concrete project_id, or "" if nothing
// matches.
func (s *Store) Resolve(identifier string) (string, error) {
	projects, err := s.ListProjects()
	if err != nil {
		return "", err
	}
	if len(projects) == 0 {
		return "", nil
	}

	if identifier == "" {
		best := projects[0]
		for _, p := range projects[1:] {
			if p.IndexedAt > best.IndexedAt {
				best = p
			}
		}
		return best.ProjectID, nil
	}

	if canonical, err := project.Canonicalize(identifier); err == nil {
		for _, p := range projects {
			if p.ProjectRoot == canonical {
				return p.ProjectID, nil
			}
		}
	}
	for _, p := range projects {
		if p.ProjectID == identifier || p.Slug == identifier {
			return p.ProjectID, nil
		}
	}
	return "", nil
}

// SaveEmbeddings replaces a project's persisted chunk vectors.
func (s *Store) SaveEmbeddings(projectID string, rows []EmbeddingRow) error {
	db, err := s.openProjectDB(projectID)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM embeddings"); err != nil {
		tx.Rollback()
		return err
	}
	for _, r := range rows {
		blob, err := encodeVector(r.Vector)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(
			"INSERT OR REPLACE INTO embeddings VALUES (?, ?, ?)",
			r.RelPath, r.ChunkIndex, blob,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadEmbeddings reads a project's persisted chunk vectors.
func (s *Store) LoadEmbeddings(projectID string) ([]EmbeddingRow, error) {
	db, err := s.openProjectDB(projectID)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query("SELECT rel_path, chunk_index, vector FROM embeddings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmbeddingRow
	for rows.Next() {
		var r EmbeddingRow
		var blob []byte
		if err := rows.Scan(&r.RelPath, &r.ChunkIndex, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		r.Vector = vec
		out = append(out, r)
	}
	return out, rows.Err()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toExtractorChunks(rows []chunkRow) []extractor.Chunk {
	out := make([]extractor.Chunk, len(rows))
	for i, r := range rows {
		out[i] = extractor.Chunk{
			StartLine: r.StartLine,
			EndLine:   r.EndLine,
			Content:   r.Content,
			Symbol:    r.Symbol,
		}
	}
	return out
}
