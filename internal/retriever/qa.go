package retriever

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	coreerrors "github.com/codeqa/engine/internal/errors"
	"github.com/codeqa/engine/internal/store"
)

const (
	noIndexMessage   = "No index found. Run index_project first."
	noMatchMessage   = "No relevant files found for this question. Try using specific function names, class names, or file names from the codebase."
)

// AnswerContext is everything a downstream language-model collaborator
// needs to compose a reply: the packed source context, any prior-turn
// history for the prompt, and the retrieval metadata the caller should
// surface alongside the eventual answer. This package never calls a
// language model itself — producing prose is the caller's job.
type AnswerContext struct {
	Question      string
	SessionID     string
	ProjectID     string
	RelevantFiles []string
	Confidence    string
	Context       string
	HistoryBlock  string
	SymbolHits    []SymbolHit
	// Message is set instead of Context when there is no index or no
	// matching file; callers should surface it verbatim and skip the
	// language-model call entirely.
	Message string
}

// AnswerQuestion assembles retrieval context and conversation history for
// question, enriching retrieval from sessionID's prior turns when supplied.
// It does not produce a final answer string; call RecordTurn afterward with
// whatever the caller's language model produces.
func (r *Retriever) AnswerQuestion(ctx context.Context, projectIdentifier, question, sessionID string) (*AnswerContext, error) {
	idx, err := r.store.LoadIndex(projectIdentifier)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return &AnswerContext{Question: question, SessionID: sessionID, Message: noIndexMessage, Confidence: "low"}, nil
	}

	var history []store.SessionTurn
	if sessionID != "" {
		history, err = r.store.LoadSession(sessionID, 0)
		if err != nil {
			return nil, err
		}
	}

	enriched := enrichQuery(question, history, r.cfg.FollowUpTurnWindow)
	retrieved, err := r.score(ctx, idx, enriched)
	if err != nil {
		return nil, err
	}

	if len(retrieved.TopFiles) == 0 {
		return &AnswerContext{
			Question:   question,
			SessionID:  sessionID,
			ProjectID:  idx.ProjectID,
			Confidence: "low",
			Message:    noMatchMessage,
		}, nil
	}

	return &AnswerContext{
		Question:      question,
		SessionID:     sessionID,
		ProjectID:     idx.ProjectID,
		RelevantFiles: retrieved.TopFiles,
		Confidence:    retrieved.Confidence,
		Context:       retrieved.Context,
		HistoryBlock:  historyBlock(history, r.cfg.HistoryPromptWindow),
		SymbolHits:    retrieved.SymbolHits,
	}, nil
}

// historyBlock renders the last window turns' question/answer pairs as a
// prompt-ready block, for a caller assembling the language-model prompt.
func historyBlock(history []store.SessionTurn, window int) string {
	if len(history) == 0 || window <= 0 {
		return ""
	}
	start := len(history) - window
	if start < 0 {
		start = 0
	}
	var parts []string
	for _, t := range history[start:] {
		parts = append(parts, fmt.Sprintf("Q: %s\nA: %s", t.Question, t.Answer))
	}
	return "Previous conversation:\n" + strings.Join(parts, "\n---\n") +
		"\n\n---\nNow answer the follow-up question below.\n\n"
}

// RecordTurn persists one completed (question, answer) exchange to
// sessionID's history so future follow-ups can enrich against it.
func (r *Retriever) RecordTurn(sessionID, question, answer string, relevantFiles []string, createdAt float64) error {
	_, err := r.store.SaveSessionTurn(sessionID, question, answer, relevantFiles, createdAt)
	return err
}

// FindRelevantFilesResult is the outcome of pure keyword/symbol retrieval,
// with no language-model involvement at all.
type FindRelevantFilesResult struct {
	Files      []string
	SymbolHits []string
	Confidence string
	Reasoning  string
}

// FindRelevantFiles runs the hybrid scorer against query and returns ranked
// files with no enrichment and no language-model call — an instant, pure
// retrieval operation.
func (r *Retriever) FindRelevantFiles(ctx context.Context, projectIdentifier, query string) (*FindRelevantFilesResult, error) {
	idx, err := r.store.LoadIndex(projectIdentifier)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return &FindRelevantFilesResult{Reasoning: noIndexMessage}, nil
	}

	retrieved, err := r.score(ctx, idx, query)
	if err != nil {
		return nil, err
	}

	symbolNames := make([]string, len(retrieved.SymbolHits))
	for i, h := range retrieved.SymbolHits {
		symbolNames[i] = h.Word
	}

	return &FindRelevantFilesResult{
		Files:      retrieved.TopFiles,
		SymbolHits: symbolNames,
		Confidence: retrieved.Confidence,
		Reasoning:  fmt.Sprintf("Matched %d files via BM25 keyword scoring and symbol lookup.", len(retrieved.TopFiles)),
	}, nil
}

// FileContentResult is a single indexed file's reassembled content plus its
// extracted metadata.
type FileContentResult struct {
	FilePath        string
	ProjectID       string
	Content         string
	Symbols         []string
	Keywords        []string
	Extension       string
	SizeBytes       int64
	ChunksCount     int
	AvailableFiles  []string // populated only when FilePath is not in the index
}

// GetFileContent returns relPath's source as stored in the index, preferring
// a fresh read from disk when the project root is still accessible.
func (r *Retriever) GetFileContent(projectIdentifier, relPath string) (*FileContentResult, error) {
	idx, err := r.store.LoadIndex(projectIdentifier)
	if err != nil {
		return nil, err
	}
	if idx == nil {
		return nil, coreerrors.IndexAbsent(projectIdentifier)
	}

	entry, ok := idx.Files[relPath]
	if !ok {
		available := make([]string, 0, len(idx.Files))
		for p := range idx.Files {
			available = append(available, p)
		}
		if len(available) > 20 {
			available = available[:20]
		}
		return &FileContentResult{FilePath: relPath, AvailableFiles: available}, coreerrors.FileNotIndexed(relPath)
	}

	chunkTexts := make([]string, len(entry.Chunks))
	for i, c := range entry.Chunks {
		chunkTexts[i] = c.Content
	}
	content := strings.Join(chunkTexts, "\n")

	fullPath := filepath.Join(idx.ProjectRoot, relPath)
	if fresh, err := os.ReadFile(fullPath); err == nil {
		content = string(fresh)
	}

	return &FileContentResult{
		FilePath:    relPath,
		ProjectID:   idx.ProjectID,
		Content:     content,
		Symbols:     entry.Symbols,
		Keywords:    entry.Keywords,
		Extension:   entry.Extension,
		SizeBytes:   entry.SizeBytes,
		ChunksCount: len(entry.Chunks),
	}, nil
}

// ListProjects returns every indexed project's summary, pure retrieval.
func (r *Retriever) ListProjects() ([]store.ProjectSummary, error) {
	return r.store.ListProjects()
}
