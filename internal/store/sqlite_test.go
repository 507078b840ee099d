package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeqa/engine/internal/extractor"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), 4)
	require.NoError(t, err)
	return s
}

func sampleIndex(root string) *Index {
	return &Index{
		ProjectRoot: root,
		IndexedAt:   1000,
		Files: map[string]*FileEntry{
			"main.go": {
				RelPath:      "main.go",
				Extension:    ".go",
				SizeBytes:    42,
				LastModified: 123.5,
				Keywords:     []string{"main", "handler"},
				Chunks: []extractor.Chunk{
					{StartLine: 1, EndLine: 3, Content: "package main\n", Symbol: ""},
					{StartLine: 4, EndLine: 6, Content: "func main() {}\n", Symbol: "main"},
				},
				Symbols: []string{"main"},
			},
		},
		KeywordMap: map[string][]string{
			"main":    {"main.go"},
			"handler": {"main.go"},
		},
		SymbolMap: map[string][]SymbolLocation{
			"main": {{File: "main.go", Line: 4, Kind: extractor.KindFunction}},
		},
	}
}

func TestSaveIndex_LoadIndex_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	root := t.TempDir()
	idx := sampleIndex(root)

	require.NoError(t, s.SaveIndex(idx))

	loaded, err := s.LoadIndex(root)

	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, idx.ProjectID, loaded.ProjectID)
	assert.Equal(t, SchemaVersion, loaded.SchemaVersion)
	assert.Equal(t, 1, loaded.TotalFiles)
	require.Contains(t, loaded.Files, "main.go")
	assert.Equal(t, []string{"main", "handler"}, loaded.Files["main.go"].Keywords)
	require.Len(t, loaded.Files["main.go"].Chunks, 2)
	assert.Equal(t, "main", loaded.Files["main.go"].Chunks[1].Symbol)
	assert.Contains(t, loaded.KeywordMap["main"], "main.go")
	require.Contains(t, loaded.SymbolMap, "main")
	assert.Equal(t, "main.go", loaded.SymbolMap["main"][0].File)
}

func TestLoadIndex_AbsentProjectReturnsNilNil(t *testing.T) {
	s := newTestStore(t)

	loaded, err := s.LoadIndex(filepath.Join(t.TempDir(), "never-indexed"))

	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSaveIndex_ReplacesPreviousContent(t *testing.T) {
	s := newTestStore(t)
	root := t.TempDir()

	require.NoError(t, s.SaveIndex(sampleIndex(root)))

	second := &Index{
		ProjectRoot: root,
		IndexedAt:   2000,
		Files: map[string]*FileEntry{
			"only.go": {RelPath: "only.go", Extension: ".go", Keywords: []string{}},
		},
		KeywordMap: map[string][]string{},
		SymbolMap:  map[string][]SymbolLocation{},
	}
	require.NoError(t, s.SaveIndex(second))

	loaded, err := s.LoadIndex(root)

	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Files, 1)
	assert.Contains(t, loaded.Files, "only.go")
	assert.NotContains(t, loaded.Files, "main.go")
}

func TestListProjects_ReturnsSavedProjects(t *testing.T) {
	s := newTestStore(t)
	rootA := t.TempDir()
	rootB := t.TempDir()
	require.NoError(t, s.SaveIndex(sampleIndex(rootA)))
	require.NoError(t, s.SaveIndex(sampleIndex(rootB)))

	projects, err := s.ListProjects()

	require.NoError(t, err)
	assert.Len(t, projects, 2)
}

func TestListProjects_EmptyStoreReturnsNil(t *testing.T) {
	s := newTestStore(t)

	projects, err := s.ListProjects()

	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestResolve_MatchesByPathSlugOrProjectID(t *testing.T) {
	s := newTestStore(t)
	root := t.TempDir()
	idx := sampleIndex(root)
	require.NoError(t, s.SaveIndex(idx))

	byPath, err := s.Resolve(root)
	require.NoError(t, err)
	assert.Equal(t, idx.ProjectID, byPath)

	bySlug, err := s.Resolve(idx.Slug)
	require.NoError(t, err)
	assert.Equal(t, idx.ProjectID, bySlug)

	byID, err := s.Resolve(idx.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, idx.ProjectID, byID)
}

func TestResolve_EmptyIdentifierReturnsMostRecentlyIndexed(t *testing.T) {
	s := newTestStore(t)
	older := sampleIndex(t.TempDir())
	older.IndexedAt = 100
	newer := sampleIndex(t.TempDir())
	newer.IndexedAt = 900
	require.NoError(t, s.SaveIndex(older))
	require.NoError(t, s.SaveIndex(newer))

	resolved, err := s.Resolve("")

	require.NoError(t, err)
	assert.Equal(t, newer.ProjectID, resolved)
}

func TestResolve_UnknownIdentifierReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SaveIndex(sampleIndex(t.TempDir())))

	resolved, err := s.Resolve("no-such-project")

	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestDeleteProject_RemovesMatchingProject(t *testing.T) {
	s := newTestStore(t)
	root := t.TempDir()
	idx := sampleIndex(root)
	require.NoError(t, s.SaveIndex(idx))

	deleted, err := s.DeleteProject(root)
	require.NoError(t, err)
	assert.True(t, deleted)

	loaded, err := s.LoadIndex(root)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDeleteProject_UnknownIdentifierReturnsFalse(t *testing.T) {
	s := newTestStore(t)

	deleted, err := s.DeleteProject("no-such-project")

	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSaveLoadEmbeddings_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	idx := sampleIndex(t.TempDir())
	require.NoError(t, s.SaveIndex(idx))

	rows := []EmbeddingRow{
		{RelPath: "main.go", ChunkIndex: 0, Vector: []float32{0.1, 0.2, 0.3}},
		{RelPath: "main.go", ChunkIndex: 1, Vector: []float32{-0.5, 0.25}},
	}
	require.NoError(t, s.SaveEmbeddings(idx.ProjectID, rows))

	loaded, err := s.LoadEmbeddings(idx.ProjectID)

	require.NoError(t, err)
	require.Len(t, loaded, 2)
}
