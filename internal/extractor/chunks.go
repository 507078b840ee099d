package extractor

import (
	"sort"
	"strings"
)

// DefaultMaxChunkLines is the default cap on a symbol-anchored chunk's span.
const DefaultMaxChunkLines = 60

// DefaultHeaderlessChunkLines is the span used for a whole-file chunk when
// no symbols were found.
const DefaultHeaderlessChunkLines = 200

// ChunkFile splits content into ordered, retrievable chunks anchored on
// symbol boundaries. An empty file yields one zero-length chunk; a file
// with no symbols yields one chunk spanning lines 1..min(total, 200).
func ChunkFile(content string, symbols []Symbol, maxChunkLines int) []Chunk {
	if maxChunkLines <= 0 {
		maxChunkLines = DefaultMaxChunkLines
	}

	lines := splitLines(content)
	total := len(lines)

	if total == 0 {
		return []Chunk{{StartLine: 0, EndLine: 0, Content: "", Symbol: ""}}
	}

	if len(symbols) == 0 {
		end := total
		if end > DefaultHeaderlessChunkLines {
			end = DefaultHeaderlessChunkLines
		}
		return []Chunk{{
			StartLine: 1,
			EndLine:   end,
			Content:   joinLines(lines[:end]),
			Symbol:    "",
		}}
	}

	sorted := make([]Symbol, len(symbols))
	copy(sorted, symbols)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Line < sorted[j].Line })

	var chunks []Chunk

	firstLine := sorted[0].Line
	if firstLine > 1 {
		headerEnd := firstLine - 1
		if headerEnd > total {
			headerEnd = total
		}
		chunks = append(chunks, Chunk{
			StartLine: 1,
			EndLine:   headerEnd,
			Content:   joinLines(lines[:headerEnd]),
			Symbol:    "",
		})
	}

	for i, sym := range sorted {
		start := sym.Line
		var end int
		if i+1 < len(sorted) {
			end = sorted[i+1].Line - 1
		} else {
			end = total
		}
		if cap := start + maxChunkLines - 1; end > cap {
			end = cap
		}
		if end > total {
			end = total
		}
		if end < start {
			end = start
		}

		startIdx := start - 1
		endIdx := end
		if startIdx < 0 {
			startIdx = 0
		}
		if endIdx > total {
			endIdx = total
		}

		chunks = append(chunks, Chunk{
			StartLine: start,
			EndLine:   end,
			Content:   joinLines(lines[startIdx:endIdx]),
			Symbol:    sym.Name,
		})
	}

	return chunks
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
