package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkFile_EmptyContentYieldsOneZeroLengthChunk(t *testing.T) {
	chunks := ChunkFile("", nil, 60)

	require.Len(t, chunks, 1)
	assert.Equal(t, Chunk{StartLine: 0, EndLine: 0, Content: "", Symbol: ""}, chunks[0])
}

func TestChunkFile_NoSymbolsYieldsWholeFileChunkCappedAt200(t *testing.T) {
	lines := make([]string, 250)
	for i := range lines {
		lines[i] = "x"
	}
	content := strings.Join(lines, "\n")

	chunks := ChunkFile(content, nil, 60)

	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 200, chunks[0].EndLine)
}

func TestChunkFile_NoSymbolsShortFileSpansWholeFile(t *testing.T) {
	content := "a\nb\nc\n"

	chunks := ChunkFile(content, nil, 60)

	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 4, chunks[0].EndLine)
}

func TestChunkFile_SymbolsProduceHeaderPlusOneChunkPerSymbol(t *testing.T) {
	lines := []string{
		"package main", // 1
		"",             // 2
		"func A() {}",  // 3
		"func B() {}",  // 4
	}
	content := strings.Join(lines, "\n")
	symbols := []Symbol{
		{Name: "A", Kind: KindFunction, Line: 3},
		{Name: "B", Kind: KindFunction, Line: 4},
	}

	chunks := ChunkFile(content, symbols, 60)

	require.Len(t, chunks, 3)
	assert.Equal(t, "", chunks[0].Symbol)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 2, chunks[0].EndLine)
	assert.Equal(t, "A", chunks[1].Symbol)
	assert.Equal(t, 3, chunks[1].StartLine)
	assert.Equal(t, "B", chunks[2].Symbol)
}

func TestChunkFile_NoHeaderWhenFirstSymbolOnLineOne(t *testing.T) {
	content := "func A() {}\nfunc B() {}\n"
	symbols := []Symbol{
		{Name: "A", Kind: KindFunction, Line: 1},
		{Name: "B", Kind: KindFunction, Line: 2},
	}

	chunks := ChunkFile(content, symbols, 60)

	require.Len(t, chunks, 2)
	assert.Equal(t, "A", chunks[0].Symbol)
	assert.Equal(t, "B", chunks[1].Symbol)
}

func TestChunkFile_SymbolChunkCappedAtMaxChunkLines(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "line"
	}
	content := strings.Join(lines, "\n")
	symbols := []Symbol{{Name: "Big", Kind: KindFunction, Line: 1}}

	chunks := ChunkFile(content, symbols, 10)

	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Equal(t, 10, chunks[0].EndLine)
}

func TestChunkFile_NonPositiveMaxChunkLinesUsesDefault(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = "line"
	}
	content := strings.Join(lines, "\n")
	symbols := []Symbol{{Name: "Big", Kind: KindFunction, Line: 1}}

	chunks := ChunkFile(content, symbols, 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, DefaultMaxChunkLines, chunks[0].EndLine)
}
